package profilepb

import (
	"fmt"
	"strconv"

	"google.golang.org/protobuf/types/known/structpb"
)

// Profile is the wire shape of a profile carried in a structpb.Struct.
type Profile struct {
	ID         int64
	FirstName  string
	LastName   string
	Email      string
	Street     string
	Number     string
	City       string
	PostalCode string
	Country    string
}

// ToStruct encodes the profile. The id travels as a decimal string because structpb
// numbers are float64. A zero id is omitted.
func (p Profile) ToStruct() (*structpb.Struct, error) {
	fields := map[string]interface{}{
		"firstName":  p.FirstName,
		"lastName":   p.LastName,
		"email":      p.Email,
		"street":     p.Street,
		"number":     p.Number,
		"city":       p.City,
		"postalCode": p.PostalCode,
		"country":    p.Country,
	}
	if p.ID != 0 {
		fields["id"] = strconv.FormatInt(p.ID, 10)
	}
	return structpb.NewStruct(fields)
}

// FromStruct reads a Profile back. Missing fields stay empty.
func FromStruct(s *structpb.Struct) (Profile, error) {
	if s == nil {
		return Profile{}, fmt.Errorf("profile payload is empty")
	}
	f := s.GetFields()
	str := func(key string) string { return f[key].GetStringValue() }
	var id int64
	if raw := str("id"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Profile{}, fmt.Errorf("invalid profile id %q: %w", raw, err)
		}
		id = v
	}
	return Profile{
		ID:         id,
		FirstName:  str("firstName"),
		LastName:   str("lastName"),
		Email:      str("email"),
		Street:     str("street"),
		Number:     str("number"),
		City:       str("city"),
		PostalCode: str("postalCode"),
		Country:    str("country"),
	}, nil
}
