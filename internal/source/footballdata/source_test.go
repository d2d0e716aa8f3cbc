package footballdata

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match_importer/internal/domain"
	"match_importer/internal/logging"
)

const sampleFeed = "\ufeffDiv,Date,Time,HomeTeam,AwayTeam,B365H,B365D,B365A\n" +
	"E0,11/08/2023,20:00,Burnley,Man City,8.00,5.50,1.33\n" +
	",,,,,,,\n" +
	"SC0,05/08/2023,12:30,Celtic,Ross County\n"

func newTestSource(baseURL string) *Source {
	return New(Config{BaseURL: baseURL, Timeout: 5 * time.Second}, logging.NewNop())
}

func TestDivisionCode(t *testing.T) {
	assert.Equal(t, "0", DivisionCode("E", 1))
	assert.Equal(t, "3", DivisionCode("E", 4))
	assert.Equal(t, "C", DivisionCode("E", 5))
	assert.Equal(t, "0", DivisionCode("SC", 1))
	assert.Equal(t, "1", DivisionCode("D", 1))
	assert.Equal(t, "2", DivisionCode("I", 2))
}

func TestURLs(t *testing.T) {
	s := newTestSource("https://example.com/")

	assert.Equal(t, "https://example.com/fixtures.csv", s.FixturesURL())
	assert.Equal(t, "https://example.com/mmz4281/2324/E0.csv", s.ResultsURL("2324", "E", 1))
	assert.Equal(t, "https://example.com/mmz4281/2324/EC.csv", s.ResultsURL("2324", "E", 5))
	assert.Equal(t, "https://example.com/mmz4281/2324/SP1.csv", s.ResultsURL("2324", "SP", 1))

	assert.Equal(t, DefaultBaseURL+"/fixtures.csv", newTestSource("").FixturesURL())
}

func TestFetch_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fixtures.csv", r.URL.Path)
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		_, _ = io.WriteString(w, sampleFeed)
	}))
	defer srv.Close()

	s := newTestSource(srv.URL)
	file, err := s.Fetch(context.Background(), s.FixturesURL())
	require.NoError(t, err)

	assert.Equal(t, s.FixturesURL(), file.URL)
	assert.Equal(t, int64(len(sampleFeed)), file.ContentLength)
	assert.Equal(t, sampleFeed, string(file.Data))
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	s := newTestSource(srv.URL)
	file, err := s.Fetch(context.Background(), s.ResultsURL("2324", "E", 1))
	require.Error(t, err)
	assert.Nil(t, file)
	assert.True(t, errors.Is(err, domain.ErrTransport))

	var transportErr *domain.TransportError
	require.True(t, errors.As(err, &transportErr))
	assert.Equal(t, http.StatusNotFound, transportErr.StatusCode)
}

func TestFetch_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := newTestSource(url).Fetch(context.Background(), url+"/fixtures.csv")
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTransport))
}

func TestDecode(t *testing.T) {
	r := Decode([]byte(sampleFeed))
	assert.Equal(t, "Div", r.Header()[0])

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "E0", first["Div"])
	assert.Equal(t, "Man City", first["AwayTeam"])
	assert.Equal(t, "1.33", first["B365A"])

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Celtic", second["HomeTeam"])
	_, present := second.Field("B365H")
	assert.False(t, present, "short row leaves trailing columns absent")
	assert.Equal(t, 3, r.Line())

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(nil).Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestDecode_MalformedLineDoesNotStopReader(t *testing.T) {
	feed := "Div,Date,HomeTeam,AwayTeam\n" +
		"E0,01/08/2023,Arse\"nal,Chelsea\n" +
		"E0,02/08/2023,Spurs,Fulham\n"
	r := Decode([]byte(feed))

	_, err := r.Next()
	require.Error(t, err)
	var rowErr *RowError
	require.True(t, errors.As(err, &rowErr))
	assert.Equal(t, 1, rowErr.Line)

	row, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "Spurs", row["HomeTeam"])
}
