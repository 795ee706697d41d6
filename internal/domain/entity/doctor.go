package entity

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Doctor is both the directory profile and the owner of the booked-slot index
type Doctor struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	Email       string          `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	Password    string          `gorm:"type:text;not null" json:"-"`
	Image       string          `gorm:"type:text;not null" json:"image"`
	Speciality  string          `gorm:"type:varchar(100);not null;index" json:"speciality"`
	Degree      string          `gorm:"type:varchar(100);not null" json:"degree"`
	Experience  string          `gorm:"type:varchar(50);not null" json:"experience"`
	About       string          `gorm:"type:text;not null" json:"about"`
	Available   bool            `gorm:"not null;default:true" json:"available"`
	Fees        decimal.Decimal `gorm:"type:decimal(10,2);not null" json:"fees"`
	Address     Address         `gorm:"type:jsonb;not null;default:'{}'" json:"address"`
	SlotsBooked SlotMap         `gorm:"type:jsonb;not null;default:'{}'" json:"slots_booked"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Doctor) TableName() string {
	return "doctors"
}

// Address is a two-line postal address stored as JSONB
type Address struct {
	Line1 string `json:"line1"`
	Line2 string `json:"line2"`
}

// Value implements driver.Valuer
func (a Address) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil || bytes == nil {
		*a = Address{}
		return err
	}
	return json.Unmarshal(bytes, a)
}

// SlotMap maps a slot date (YYYY-MM-DD) to the time labels already booked on
// that date. A label appears at most once per date.
type SlotMap map[string][]string

// Has reports whether time is booked on date.
func (m SlotMap) Has(date, time string) bool {
	for _, t := range m[date] {
		if t == time {
			return true
		}
	}
	return false
}

// Add books time on date. It returns false, leaving the map untouched, when
// the label is already present.
func (m SlotMap) Add(date, time string) bool {
	if m.Has(date, time) {
		return false
	}
	m[date] = append(m[date], time)
	return true
}

// Remove releases time on date and reports whether it was present. The date
// key is kept with an empty list once its last label is released.
func (m SlotMap) Remove(date, time string) bool {
	labels, ok := m[date]
	if !ok {
		return false
	}

	kept := make([]string, 0, len(labels))
	removed := false
	for _, t := range labels {
		if t == time {
			removed = true
			continue
		}
		kept = append(kept, t)
	}
	m[date] = kept
	return removed
}

// Clone returns a deep copy of the map.
func (m SlotMap) Clone() SlotMap {
	out := make(SlotMap, len(m))
	for date, labels := range m {
		out[date] = append([]string(nil), labels...)
	}
	return out
}

// Value implements driver.Valuer. An empty map is stored as '{}' rather than NULL.
func (m SlotMap) Value() (driver.Value, error) {
	if m == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner
func (m *SlotMap) Scan(value interface{}) error {
	bytes, err := jsonBytes(value)
	if err != nil {
		return err
	}

	result := SlotMap{}
	if bytes != nil {
		if err := json.Unmarshal(bytes, &result); err != nil {
			return err
		}
	}
	*m = result
	return nil
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("failed to unmarshal JSONB value: %v", value)
	}
}
