package analytics

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellerdesk/backend/internal/domain/marketplace"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

func exportLines(t *testing.T, out []byte) []string {
	t.Helper()
	require.True(t, bytes.HasPrefix(out, utf8BOM), "missing BOM")
	body := strings.TrimSuffix(string(out[len(utf8BOM):]), "\r\n")
	return strings.Split(body, "\r\n")
}

func TestToDelimitedText_Empty(t *testing.T) {
	out := ToDelimitedText(nil, marketplace.PackedSet{})

	lines := exportLines(t, out)
	require.Len(t, lines, 1)
	assert.Equal(t, strings.Join(ExportHeader, ","), lines[0])
}

func TestToDelimitedText_Rows(t *testing.T) {
	groups := []marketplace.OrderGroup{
		{
			ProductKey:     "MUG-1",
			Representative: marketplace.LineItem{OfferID: "MUG-1", SkuID: "111", Name: `Mug "Classic"`, UnitPrice: "450.00", Currency: "RUB"},
			Currency:       "RUB",
			Members: []marketplace.Order{
				{PostingID: "p1", LineItems: []marketplace.LineItem{{Quantity: 2}}},
				{PostingID: "p2", LineItems: []marketplace.LineItem{{}}},
				{PostingID: "p3", LineItems: []marketplace.LineItem{{Quantity: 1}}},
			},
		},
		{
			ProductKey:     "CUP,2",
			Representative: marketplace.LineItem{OfferID: "CUP,2", Name: "Cup", UnitPrice: "99", Currency: "USD"},
			Currency:       "USD",
			Members:        []marketplace.Order{{PostingID: "p4", LineItems: []marketplace.LineItem{{Quantity: 5}}}},
		},
	}

	lines := exportLines(t, ToDelimitedText(groups, marketplace.NewPackedSet("p2", "p4")))

	require.Len(t, lines, len(groups)+1)
	assert.Equal(t, `MUG-1,111,"Mug ""Classic""",450.00,RUB,4,2,1`, lines[1])
	assert.Equal(t, `"CUP,2",,"Cup",99,USD,5,0,1`, lines[2])
}

func TestWriteDelimited_MatchesToDelimitedText(t *testing.T) {
	groups := BuildGroups([]marketplace.Order{singleItem("p1", "A"), singleItem("p2", "A")})

	var buf bytes.Buffer
	require.NoError(t, WriteDelimited(&buf, groups, marketplace.PackedSet{}))
	assert.Equal(t, ToDelimitedText(groups, marketplace.PackedSet{}), buf.Bytes())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestWriteDelimited_WriterError(t *testing.T) {
	groups := BuildGroups([]marketplace.Order{singleItem("p1", "A")})
	err := WriteDelimited(failingWriter{}, groups, marketplace.PackedSet{})
	assert.Error(t, err)
}
