package extraction

import (
	"context"
	"strings"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/cloudflare/ahocorasick"
)

// knownSuppliers are matched against the uploaded file name so simulated
// results stay stable for recognizable fixtures.
var knownSuppliers = []string{
	"acme",
	"globex",
	"initech",
	"umbrella",
	"stark",
}

// SimulatedExtractor fabricates plausible extraction payloads without calling
// any external service. It is the default collaborator when no API key is
// configured, and the one tests run against.
type SimulatedExtractor struct {
	faker    *gofakeit.Faker
	matcher  *ahocorasick.Matcher
	patterns []string
}

// NewSimulatedExtractor creates a simulated extractor. A non-zero seed makes
// the generated payloads reproducible.
func NewSimulatedExtractor(seed int64) *SimulatedExtractor {
	return &SimulatedExtractor{
		faker:    gofakeit.New(seed),
		matcher:  ahocorasick.NewStringMatcher(knownSuppliers),
		patterns: knownSuppliers,
	}
}

// Extract fabricates a payload. When the file name mentions a known supplier
// the payload uses it; otherwise a random company name is generated.
func (s *SimulatedExtractor) Extract(ctx context.Context, doc Document) (*Payload, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	supplier := s.faker.Company()
	if hits := s.matcher.Match([]byte(strings.ToLower(doc.FileName))); len(hits) > 0 {
		supplier = capitalize(s.patterns[hits[0]]) + " Ltd"
	}

	productCount := s.faker.Number(1, 4)
	products := make([]ProductLine, productCount)
	total := 0.0
	for i := range products {
		quantity := float64(s.faker.Number(1, 5))
		price := s.faker.Price(1, 200)
		products[i] = ProductLine{
			Name:     s.faker.ProductName(),
			Quantity: quantity,
			Price:    price,
		}
		total += quantity * price
	}

	return &Payload{
		Date:             s.faker.Date().Format("2006-01-02"),
		Supplier:         supplier,
		Products:         products,
		TotalPrice:       total,
		Currency:         s.faker.CurrencyShort(),
		DocumentLanguage: s.faker.RandomString([]string{"en", "de", "fr", "pt"}),
	}, nil
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
