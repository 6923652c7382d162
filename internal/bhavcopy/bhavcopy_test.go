package bhavcopy

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"StockPulse/internal/config"
	"StockPulse/internal/model"
)

const sample = `SYMBOL, SERIES, DATE1, PREV_CLOSE, OPEN_PRICE, HIGH_PRICE, LOW_PRICE, LAST_PRICE, CLOSE_PRICE, AVG_PRICE, TTL_TRD_QNTY
AAA, EQ, 01-Dec-2025, 195.00, 196.00, 201.00, 194.00, 199.90, 200.00, 198.10, 12000
BBB, EQ, 01-Dec-2025, 205.50, 206.00, 212.00, 204.00, 209.00, 209.50, 208.00, 5000
CCC, BE, 01-Dec-2025, 199.00, 199.00, 201.00, 198.00, 200.00, 200.00, 199.50, 300
DDD, EQ, 01-Dec-2025, 150.00, 151.00, 152.00, 149.00, 150.50, 150.50, 150.20, 900
EEE, EQ, 01-Dec-2025, 200.00, 200.00, 201.00, 199.00, 200.00, 200.00, 200.00, 100
FFF, EQ, 01-Dec-2025, -, -, -, -, -, -, -, -
GGG, EQ, 01-Dec-2025, 189.00, 189.00, 191.00, 188.00, 190.00, 190.00, 189.50, 700
`

func TestParse(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, rows, 6, "the row with dashes is skipped")

	assert.Equal(t, model.BhavRow{
		Symbol: "AAA", Series: "EQ", PrevClose: 195, Open: 196, High: 201, Low: 194, Close: 200, Volume: 12000,
	}, rows[0])
	assert.Equal(t, "BE", rows[2].Series)
}

func TestParse_MissingColumn(t *testing.T) {
	_, err := Parse(strings.NewReader("SYMBOL,SERIES\nAAA,EQ\n"))
	assert.ErrorContains(t, err, "missing column")

	_, err = Parse(strings.NewReader(""))
	assert.Error(t, err)
}

func TestScreen(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	picks := Screen(rows, config.Band{Min: 190, Max: 210}, 5)
	var got []string
	for _, p := range picks {
		got = append(got, p.Symbol)
	}
	// BE series and out-of-band rows are dropped; equal closes keep file order.
	assert.Equal(t, []string{"BBB", "AAA", "EEE", "GGG"}, got)

	assert.Equal(t, "203.22", picks[0].StopLoss.String())
	assert.Equal(t, "219.98", picks[0].Target.String())
	assert.Equal(t, "194", picks[1].StopLoss.String())
	assert.Equal(t, "210", picks[1].Target.String())
	assert.Equal(t, picks[1].Close, picks[1].Live, "live defaults to the report close")

	top2 := Screen(rows, config.Band{Min: 190, Max: 210}, 2)
	assert.Len(t, top2, 2)

	assert.Empty(t, Screen(rows, config.Band{Min: 1000, Max: 2000}, 5))
}

func TestFileNames(t *testing.T) {
	d := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "cm01DEC2025bhav.csv", CacheFileName(d))
	assert.Equal(t, "sec_bhavdata_full_01122025.csv", RemoteFileName(d))
	assert.Equal(t, time.Date(2025, 11, 30, 0, 0, 0, 0, time.UTC), PreviousDay(d))
}

func TestDownloader_Fetch(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path != "/sec_bhavdata_full_01122025.csv" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sample))
	}))
	defer srv.Close()

	dir := t.TempDir()
	d := NewDownloader(srv.URL+"/", dir, zap.NewNop())
	day := time.Date(2025, 12, 1, 0, 0, 0, 0, time.UTC)

	path, err := d.Fetch(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "cm01DEC2025bhav.csv"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, sample, string(data))

	// Second call is served from the cache.
	_, err = d.Fetch(context.Background(), day)
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))

	rows, err := ParseFile(path)
	require.NoError(t, err)
	assert.Len(t, rows, 6)

	_, err = d.Fetch(context.Background(), day.AddDate(0, 0, 1))
	assert.ErrorContains(t, err, "status 404")
	entries, _ := os.ReadDir(dir)
	assert.Len(t, entries, 1, "failed download leaves no file behind")
}

func TestLookup(t *testing.T) {
	rows, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	picks := Lookup(rows, []string{"BBB.NS", "ccc", "AAA", "NOPE"})
	require.Len(t, picks, 2)
	assert.Equal(t, "BBB", picks[0].Symbol)
	assert.Equal(t, "AAA", picks[1].Symbol)
	assert.Equal(t, "194", picks[1].StopLoss.String())
	assert.Equal(t, "210", picks[1].Target.String())
}
