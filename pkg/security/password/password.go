package password

import (
	"crypto/sha256"
	"encoding/base64"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	zxcvbn "github.com/nbutton23/zxcvbn-go"
	"golang.org/x/crypto/bcrypt"
)

// constant rules for manually chosen passwords
const (
	MinLength = 8
	MaxLength = 256
	MinScore  = 3
)

// Password is a hashed credential of a single account
type Password struct {
	OwnerID   uuid.UUID `db:"owner_id" json:"-"`
	Hash      []byte    `db:"hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"-"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Validate validates password
func (p Password) Validate() error {
	if p.OwnerID == uuid.Nil {
		return ErrNilOwnerID
	}

	if len(p.Hash) == 0 {
		return ErrEmptyPassword
	}

	return nil
}

// EvaluatePasswordStrength evaluates password's strength by checking length,
// complexity, characters used etc.
func EvaluatePasswordStrength(rawpass []byte, data []string) error {
	pl := utf8.RuneCount(rawpass)
	if pl < MinLength {
		return ErrShortPassword
	}

	if pl > MaxLength {
		return ErrLongPassword
	}

	// evaluating password's strength by the library's score
	result := zxcvbn.PasswordStrength(string(rawpass), data)
	if result.Score < MinScore {
		return ErrUnsafePassword
	}

	return nil
}

// prehash folds a raw password into a fixed 44 byte input, bcrypt
// ignores everything past 72 bytes
func prehash(rawpass []byte) []byte {
	sum := sha256.Sum256(rawpass)

	out := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(out, sum[:])

	return out
}

// New creates a hash from a given raw password byte slice
func New(ownerID uuid.UUID, rawpass []byte, cost int) (p Password, err error) {
	if ownerID == uuid.Nil {
		return p, ErrNilOwnerID
	}

	if len(rawpass) == 0 {
		return p, ErrEmptyPassword
	}

	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return p, ErrInvalidCost
	}

	h, err := bcrypt.GenerateFromPassword(prehash(rawpass), cost)
	if err != nil {
		return p, err
	}

	now := time.Now().UTC()

	p = Password{
		OwnerID:   ownerID,
		Hash:      h,
		CreatedAt: now,
		UpdatedAt: now,
	}

	return p, nil
}

// Compare tests whether a given plaintext password is valid
func (p Password) Compare(rawpass []byte) bool {
	if len(p.Hash) == 0 {
		return false
	}

	return bcrypt.CompareHashAndPassword(p.Hash, prehash(rawpass)) == nil
}
