package content

import (
	"time"

	"github.com/asaskevich/govalidator"
)

// Kind designates a content record kind
type Kind uint8

// content kinds
const (
	KAgendaItem Kind = iota + 1
	KBulletin
	KNewsletter
	KContact
)

// Kinds lists every content kind
var Kinds = []Kind{KAgendaItem, KBulletin, KNewsletter, KContact}

func (k Kind) String() string {
	switch k {
	case KAgendaItem:
		return "agendaItem"
	case KBulletin:
		return "bulletin"
	case KNewsletter:
		return "newsLetter"
	case KContact:
		return "contactItem"
	default:
		return "unknown"
	}
}

// Table returns the name of the table holding records of this kind
func (k Kind) Table() string {
	switch k {
	case KAgendaItem:
		return "agenda_item"
	case KBulletin:
		return "bulletin"
	case KNewsletter:
		return "newsletter"
	case KContact:
		return "contact_item"
	default:
		return ""
	}
}

// Record is a single content record of any kind
type Record interface {
	Kind() Kind
	RecordID() int64
	WithID(id int64) Record
	Validate() error
}

// validate runs the struct tag validation of a record
func validate(r interface{}) error {
	if _, err := govalidator.ValidateStruct(r); err != nil {
		return &ValidationError{Reason: err.Error()}
	}

	return nil
}

func requireTime(field string, t time.Time) error {
	if t.IsZero() {
		return &ValidationError{Reason: field + ": non zero value required"}
	}

	return nil
}

//---------------------------------------------------------------------------
// agenda
//---------------------------------------------------------------------------

// AgendaItem is a scheduled event
type AgendaItem struct {
	ID    int64     `db:"id" json:"id" valid:"-"`
	Title string    `db:"title" json:"title" valid:"required,stringlength(1|140)"`
	Type  string    `db:"type" json:"type" valid:"required,stringlength(1|140)"`
	Start time.Time `db:"start" json:"start" valid:"-"`
	End   time.Time `db:"end" json:"end" valid:"-"`
}

func (i AgendaItem) Kind() Kind             { return KAgendaItem }
func (i AgendaItem) RecordID() int64        { return i.ID }
func (i AgendaItem) WithID(id int64) Record { i.ID = id; return i }

func (i AgendaItem) Validate() error {
	if err := validate(i); err != nil {
		return err
	}

	if err := requireTime("start", i.Start); err != nil {
		return err
	}

	return requireTime("end", i.End)
}

//---------------------------------------------------------------------------
// bulletin
//---------------------------------------------------------------------------

// Bulletin is a short announcement
type Bulletin struct {
	ID          int64     `db:"id" json:"id" valid:"-"`
	Title       string    `db:"title" json:"title" valid:"required,stringlength(1|140)"`
	Body        string    `db:"body" json:"body" valid:"required"`
	PublishedAt time.Time `db:"published_at" json:"publishedAt" valid:"-"`
}

func (b Bulletin) Kind() Kind             { return KBulletin }
func (b Bulletin) RecordID() int64        { return b.ID }
func (b Bulletin) WithID(id int64) Record { b.ID = id; return b }

func (b Bulletin) Validate() error {
	if err := validate(b); err != nil {
		return err
	}

	return requireTime("publishedAt", b.PublishedAt)
}

//---------------------------------------------------------------------------
// newsletter
//---------------------------------------------------------------------------

// Newsletter is a published document
type Newsletter struct {
	ID          int64     `db:"id" json:"id" valid:"-"`
	Title       string    `db:"title" json:"title" valid:"required,stringlength(1|140)"`
	DocumentURL string    `db:"document_url" json:"documentUrl" valid:"required,stringlength(1|500)"`
	PublishedAt time.Time `db:"published_at" json:"publishedAt" valid:"-"`
}

func (n Newsletter) Kind() Kind             { return KNewsletter }
func (n Newsletter) RecordID() int64        { return n.ID }
func (n Newsletter) WithID(id int64) Record { n.ID = id; return n }

func (n Newsletter) Validate() error {
	if err := validate(n); err != nil {
		return err
	}

	return requireTime("publishedAt", n.PublishedAt)
}

//---------------------------------------------------------------------------
// contact
//---------------------------------------------------------------------------

// Contact is an entry of the contact listing
type Contact struct {
	ID          int64  `db:"id" json:"id" valid:"-"`
	DisplayName string `db:"display_name" json:"displayName" valid:"required,stringlength(1|140)"`
	Email       string `db:"email" json:"email" valid:"required,stringlength(1|500)"`
	Order       int    `db:"order" json:"order" valid:"-"`
	DetailText  string `db:"detail_text" json:"detailText" valid:"required,stringlength(1|140)"`
}

func (c Contact) Kind() Kind             { return KContact }
func (c Contact) RecordID() int64        { return c.ID }
func (c Contact) WithID(id int64) Record { c.ID = id; return c }

func (c Contact) Validate() error {
	return validate(c)
}
