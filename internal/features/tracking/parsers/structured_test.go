package parsers

import (
	"testing"

	"ltl-tracker/internal/features/tracking/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestStructured_ParcelDelivery verifies extraction from a schema.org
// ParcelDelivery block.
func TestStructured_ParcelDelivery(t *testing.T) {
	payload := []byte(`
<html><head>
<script type="application/ld+json">
{
  "@context": "https://schema.org",
  "@type": "ParcelDelivery",
  "deliveryStatus": "In Transit",
  "deliveryAddress": {"@type": "PostalAddress", "name": "Columbus, OH"},
  "statusDate": "2024-03-14T10:32:00Z"
}
</script>
</head><body></body></html>`)

	ext, ok := NewStructured().TryExtract(payload, domain.NewTrackingNumber("70123456"))
	require.True(t, ok)

	assert.Equal(t, "In Transit", ext.StatusText)
	assert.Equal(t, "Columbus, OH", ext.Location)
	assert.Equal(t, domain.ParserStructured, ext.Parser)
	assert.Equal(t, 0.95, ext.Confidence)
	require.NotNil(t, ext.EventTime)
	assert.Equal(t, 2024, ext.EventTime.Year())
}

// TestStructured_EnumURLTrimmed verifies schema.org enumeration URLs reduce
// to their last segment.
func TestStructured_EnumURLTrimmed(t *testing.T) {
	payload := []byte(`
<script type="application/ld+json">
{"@type": "ParcelDelivery", "deliveryStatus": "https://schema.org/OrderDelivered"}
</script>`)

	ext, ok := NewStructured().TryExtract(payload, domain.NewTrackingNumber("70123456"))
	require.True(t, ok)
	assert.Equal(t, "OrderDelivered", ext.StatusText)
}

// TestStructured_NestedGraph verifies the delivery node is found inside a
// surrounding document.
func TestStructured_NestedGraph(t *testing.T) {
	payload := []byte(`
<script type="application/ld+json">
{
  "@graph": [
    {"@type": "WebPage", "name": "Tracking"},
    {"@type": "ParcelDelivery", "trackingStatus": "Delivered", "currentLocation": "Columbus, OH"}
  ]
}
</script>`)

	ext, ok := NewStructured().TryExtract(payload, domain.NewTrackingNumber("70123456"))
	require.True(t, ok)
	assert.Equal(t, "Delivered", ext.StatusText)
	assert.Equal(t, "Columbus, OH", ext.Location)
}

// TestStructured_NoJSONLD verifies payloads without embedded records do not
// match.
func TestStructured_NoJSONLD(t *testing.T) {
	payload := []byte(`<html><body><p>Delivered 03/14/2024</p></body></html>`)

	_, ok := NewStructured().TryExtract(payload, domain.NewTrackingNumber("70123456"))
	assert.False(t, ok)
}

// TestStructured_MalformedJSON verifies broken blocks are skipped quietly.
func TestStructured_MalformedJSON(t *testing.T) {
	payload := []byte(`<script type="application/ld+json">{not json}</script>`)

	_, ok := NewStructured().TryExtract(payload, domain.NewTrackingNumber("70123456"))
	assert.False(t, ok)
}
