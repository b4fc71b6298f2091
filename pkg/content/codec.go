package content

import (
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Decode reads a new record of a given kind from a JSON body
// NOTE: an ID in the body is ignored
func Decode(k Kind, body []byte) (Record, error) {
	r, err := blank(k)
	if err != nil {
		return nil, err
	}

	return Merge(r, body)
}

// Merge applies the fields present in a JSON body on top of an existing record
func Merge(r Record, body []byte) (_ Record, err error) {
	id := r.RecordID()

	switch v := r.(type) {
	case AgendaItem:
		err = json.Unmarshal(body, &v)
		r = v
	case Bulletin:
		err = json.Unmarshal(body, &v)
		r = v
	case Newsletter:
		err = json.Unmarshal(body, &v)
		r = v
	case Contact:
		err = json.Unmarshal(body, &v)
		r = v
	default:
		return nil, ErrInvalidKind
	}

	if err != nil {
		return nil, &ValidationError{Reason: "malformed " + r.Kind().String() + ": " + err.Error()}
	}

	return r.WithID(id), nil
}

func blank(k Kind) (Record, error) {
	switch k {
	case KAgendaItem:
		return AgendaItem{}, nil
	case KBulletin:
		return Bulletin{}, nil
	case KNewsletter:
		return Newsletter{}, nil
	case KContact:
		return Contact{}, nil
	default:
		return nil, ErrInvalidKind
	}
}
