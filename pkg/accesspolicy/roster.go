package accesspolicy

// policies of every resource class
var (
	// ContentCollection is a list of content records
	ContentCollection = Policy{
		Supported: APView | APCreate,
		Everyone:  APView,
		Admin:     APCreate,
	}

	// ContentItem is a single content record
	ContentItem = Policy{
		Supported: APView | APChange | APDelete,
		Everyone:  APView,
		Admin:     APChange | APDelete,
	}

	// Timeline is the read-only combined feed
	Timeline = Policy{
		Supported: APView,
		Everyone:  APView,
	}

	// Enrollment creates accounts for anonymous callers
	// and deletes the caller's own account
	Enrollment = Policy{
		Supported:     APCreate | APDelete,
		Anonymous:     APCreate,
		Authenticated: APDelete,
	}

	// PushSettings are the caller's own push settings
	PushSettings = Policy{
		Supported:     APView | APCreate,
		Authenticated: APView | APCreate,
	}

	// DeviceByID addresses registrations by identifier, which is never allowed
	DeviceByID = Policy{
		Forbidden: true,
	}

	// Session is login and logout
	Session = Policy{
		Supported:     APCreate | APDelete,
		Everyone:      APCreate,
		Authenticated: APDelete,
	}
)

// Listing is a content listing that can be asked to include everything
type Listing uint8

// listings
const (
	LAgenda Listing = iota + 1
	LBulletins
	LNewsletters
	LContacts
)

// CanListAll tells whether a caller asking for every record of a listing
// gets them, instead of the filtered default listing
//
// NOTE: future bulletins and newsletters are reserved for administrators,
// past agenda items are visible to anyone
func CanListAll(l Listing, c Caller) bool {
	switch l {
	case LBulletins, LNewsletters:
		return c.Authenticated && c.IsAdmin
	case LAgenda, LContacts:
		return true
	default:
		return false
	}
}
