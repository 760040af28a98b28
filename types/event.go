package types

// Sentinel value persisted when the operator never supplied a date or time.
// The public site renders it as "TBA", so the field must never be empty.
const Unknown = "unknown"

// Event statuses
const (
	StatusUpcoming = "upcoming"
	StatusPast     = "past"
)

// Event is one entry in the church event catalog. Text fields carry both
// locales because the public site renders PT and EN from the same document.
type Event struct {
	ID         string   `json:"id"`
	TitlePT    string   `json:"title_pt"`
	TitleEN    string   `json:"title_en"`
	DescPT     string   `json:"desc_pt,omitempty"`
	DescEN     string   `json:"desc_en,omitempty"`
	LocationPT string   `json:"location_pt,omitempty"`
	LocationEN string   `json:"location_en,omitempty"`
	Date       string   `json:"date"`
	Time       string   `json:"time"`
	Status     string   `json:"status"`
	CoverImage string   `json:"cover_image,omitempty"`
	Photos     []string `json:"photos,omitempty"`
	Verse      string   `json:"verse,omitempty"`
	Topics     []string `json:"topics,omitempty"`
}

// Field keys accepted in edit changes and structured command bodies.
var EventFieldKeys = []string{
	"title_pt", "title_en",
	"desc_pt", "desc_en",
	"location_pt", "location_en",
	"date", "time", "status", "verse",
}

// IsEventField reports whether key names a patchable Event field.
func IsEventField(key string) bool {
	for _, k := range EventFieldKeys {
		if k == key {
			return true
		}
	}
	return false
}

// Apply overwrites only the fields present in changes. The event id is never
// touched here; it is assigned once at creation.
func (e *Event) Apply(changes map[string]string) {
	for key, val := range changes {
		switch key {
		case "title_pt":
			e.TitlePT = val
		case "title_en":
			e.TitleEN = val
		case "desc_pt":
			e.DescPT = val
		case "desc_en":
			e.DescEN = val
		case "location_pt":
			e.LocationPT = val
		case "location_en":
			e.LocationEN = val
		case "date":
			e.Date = val
		case "time":
			e.Time = val
		case "status":
			e.Status = val
		case "verse":
			e.Verse = val
		}
	}
}

// FindEvent returns the index of the event with the given id, or -1.
func FindEvent(events []Event, id string) int {
	for i := range events {
		if events[i].ID == id {
			return i
		}
	}
	return -1
}
