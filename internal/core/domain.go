package core

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	Cash   PaymentMethod = "dinheiro"
	Online PaymentMethod = "pagamento online"
)

type (
	// PaymentMethod is the closed set of ways a service can be paid.
	PaymentMethod string

	// Date is a calendar date with no time-of-day. It serializes as
	// "yyyy-MM-dd", the format the stored documents use.
	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Service is one billed barbering action.
	Service struct {
		ID            string        `json:"id"`
		Name          string        `json:"name"`
		Price         Money         `json:"price"`
		PaymentMethod PaymentMethod `json:"paymentMethod"`
		Date          Date          `json:"date"`
	}

	// PredefinedService is a reusable name+price template offered when
	// logging a Service. Uniqueness is by name, there is no id.
	PredefinedService struct {
		Name  string `json:"name"`
		Price Money  `json:"price"`
	}

	// ClientPlan is a prepaid bundle of a fixed number of cuts for one
	// client. RemainingCuts only moves via consume and reset.
	ClientPlan struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Price         Money  `json:"price"`
		TotalCuts     int    `json:"totalCuts"`
		RemainingCuts int    `json:"remainingCuts"`
	}
)

var (
	ErrInvalidDate          = errors.New("invalid date")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrEmptyName            = errors.New("empty name")
	ErrNameTooLong          = errors.New("name too long (max 200 characters)")
	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidCuts          = errors.New("total cuts must be positive")
	ErrCutsOutOfRange       = errors.New("remaining cuts out of range")
)

// NewID returns a fresh unique id for a Service or ClientPlan.
func NewID() string {
	return uuid.NewString()
}

func (p PaymentMethod) Validate() error {
	switch p {
	case Cash, Online:
		return nil
	default:
		return ErrInvalidPaymentMethod
	}
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// Today returns the current calendar date.
func Today() Date {
	now := time.Now()
	return NewDate(now.Year(), int(now.Month()), now.Day())
}

// ParseDate parses a "yyyy-MM-dd" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// String returns the canonical "yyyy-MM-dd" form.
func (d Date) String() string {
	return d.Format("2006-01-02")
}

// SameDay reports whether both dates fall on the same calendar day.
func (d Date) SameDay(other Date) bool {
	return d.Year() == other.Year() && d.YearDay() == other.YearDay()
}

// Before reports whether d falls on an earlier calendar day than other.
func (d Date) Before(other Date) bool {
	return d.String() < other.String()
}

// After reports whether d falls on a later calendar day than other.
func (d Date) After(other Date) bool {
	return other.Before(d)
}

// AddDays returns the date n calendar days after d.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.AddDate(0, 0, n)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	// Older documents carried a full timestamp; keep only the day.
	if len(s) > 10 {
		s = s[:10]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Service) Validate() error {
	if len(strings.TrimSpace(s.Name)) == 0 {
		return ErrEmptyName
	}
	if len(s.Name) > 200 {
		return ErrNameTooLong
	}
	if err := s.Price.Validate(); err != nil {
		return err
	}
	if err := s.PaymentMethod.Validate(); err != nil {
		return err
	}
	return s.Date.Validate()
}

func (p PredefinedService) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	return p.Price.Validate()
}

func (p ClientPlan) Validate() error {
	if len(strings.TrimSpace(p.Name)) == 0 {
		return ErrEmptyName
	}
	if len(p.Name) > 200 {
		return ErrNameTooLong
	}
	if err := p.Price.Validate(); err != nil {
		return err
	}
	if p.TotalCuts < 1 {
		return ErrInvalidCuts
	}
	if p.RemainingCuts < 0 || p.RemainingCuts > p.TotalCuts {
		return ErrCutsOutOfRange
	}
	return nil
}

// DefaultCatalog is the predefined-service list seeded on first run.
func DefaultCatalog() []PredefinedService {
	return []PredefinedService{
		{Name: "Corte padrão", Price: Money{Cents: 3000}},
		{Name: "Corte + barba", Price: Money{Cents: 5000}},
		{Name: "Sobrancelha", Price: Money{Cents: 1000}},
		{Name: "Corte navalhado", Price: Money{Cents: 3500}},
		{Name: "Corte maquina", Price: Money{Cents: 2000}},
	}
}
