package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"flowbarber/internal/core"
)

var (
	leadingDateRe = regexp.MustCompile(`^(\d{2}/\d{2}/\d{2})\s`)
	priceRe       = regexp.MustCompile(`R\$\s*([\d,.]+)`)
)

// Parse extracts services from pasted report text, best effort.
//
// It locates a recognized header line, then for each following line takes a
// leading dd/MM/yy date, the rightmost payment-method keyword (whichever of
// the two occurs later in the line wins, so service names containing a
// keyword substring do not confuse the split), the text before the keyword
// as the name, and the first R$ amount at or after the keyword as the price.
// Lines failing any step are skipped; a missing header or zero parsed rows
// yields an empty slice, never an error. Returned services carry no id.
func Parse(text string) []core.Service {
	lines := strings.Split(text, "\n")

	startIndex := findHeader(lines, "data serviço método preço")
	if startIndex == -1 {
		startIndex = findHeader(lines, "serviços realizados")
	}
	if startIndex == -1 {
		return nil
	}

	var services []core.Service
	for _, raw := range lines[startIndex+1:] {
		line := strings.TrimSpace(raw)
		if len(line) < 10 {
			continue
		}

		m := leadingDateRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		date, err := parseShortDate(m[1])
		if err != nil {
			continue
		}

		rest := strings.TrimSpace(line[len(m[1]):])

		onlineIdx := strings.LastIndex(rest, string(core.Online))
		cashIdx := strings.LastIndex(rest, string(core.Cash))

		var method core.PaymentMethod
		var methodIdx int
		switch {
		case onlineIdx != -1 && (cashIdx == -1 || onlineIdx > cashIdx):
			method, methodIdx = core.Online, onlineIdx
		case cashIdx != -1:
			method, methodIdx = core.Cash, cashIdx
		default:
			continue
		}

		name := strings.TrimSpace(rest[:methodIdx])
		tail := rest[methodIdx:]

		pm := priceRe.FindStringSubmatch(tail)
		if pm == nil {
			continue
		}
		price, err := parsePrice(pm[1])
		if err != nil {
			continue
		}

		if name == "" {
			continue
		}
		services = append(services, core.Service{
			Name:          name,
			Price:         price,
			PaymentMethod: method,
			Date:          date,
		})
	}
	return services
}

func findHeader(lines []string, marker string) int {
	for i, line := range lines {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(line)), marker) {
			return i
		}
	}
	return -1
}

// parseShortDate parses dd/MM/yy into a calendar date.
func parseShortDate(s string) (core.Date, error) {
	parts := strings.Split(s, "/")
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	year, err := strconv.Atoi(parts[2])
	if err != nil {
		return core.Date{}, core.ErrInvalidDate
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return core.Date{}, core.ErrInvalidDate
	}
	d := core.NewDate(2000+year, month, day)
	// time.Date normalizes overflow (31/02 becomes 02/03), so an impossible
	// day shows up as a changed component.
	if d.Day() != day || int(d.Month()) != month {
		return core.Date{}, core.ErrInvalidDate
	}
	return d, nil
}

// parsePrice converts "30,00" or "1.234,56" to Money: thousands dots are
// dropped and the decimal comma becomes a dot.
func parsePrice(s string) (core.Money, error) {
	s = strings.ReplaceAll(s, ".", "")
	s = strings.Replace(s, ",", ".", 1)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return core.Money{}, core.ErrInvalidAmount
	}
	m := core.Money{Cents: int64(math.Round(f * 100))}
	if err := m.Validate(); err != nil {
		return core.Money{}, err
	}
	return m, nil
}
