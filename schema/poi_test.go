package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string {
	return &s
}

func TestPharmacyIsLikelyOpenWithoutHours(t *testing.T) {
	p := Place{Kind: PharmacyPlace}
	assert.True(t, p.IsLikelyOpen())

	p.OpeningHours = strPtr("Mo-Fr 09:00-18:00")
	assert.True(t, p.IsLikelyOpen())
}

func TestClinicIsLikelyOpenByHours(t *testing.T) {
	for _, hours := range []string{"24/7", "Mo-Su 08:00-20:00", "Круглосуточно", "open 24 hours"} {
		p := Place{Kind: ClinicPlace, OpeningHours: strPtr(hours)}
		assert.True(t, p.IsLikelyOpen(), hours)
	}

	p := Place{Kind: HospitalPlace, OpeningHours: strPtr("Mo-Fr 09:00-18:00")}
	assert.False(t, p.IsLikelyOpen())

	assert.False(t, Place{Kind: OtherPlace}.IsLikelyOpen())
}

func TestPhoneURIIsVerbatim(t *testing.T) {
	p := Place{Phone: strPtr("+7 (727) 123-45-67")}
	assert.Equal(t, "tel:+7 (727) 123-45-67", p.PhoneURI())
	assert.Equal(t, "", Place{}.PhoneURI())
}

func TestLocationValid(t *testing.T) {
	assert.True(t, Location{Latitude: 51.1, Longitude: 71.4}.Valid())
	assert.False(t, Location{Latitude: 91, Longitude: 0}.Valid())
	assert.False(t, Location{Latitude: 0, Longitude: -180.5}.Valid())
}
