package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// jobPage is long enough that the plain fetch is trusted and no browser
// rendering is attempted.
func jobPage() string {
	return fmt.Sprintf(`<html><head><style>h1{color:blue}</style></head><body>
		<h1>Backend Engineer</h1>
		<script>trackVisit()</script>
		<p>We are looking for an engineer with Python and SQL experience. %s</p>
	</body></html>`, strings.Repeat("More details about the role. ", 30))
}

func TestJobDescription_ExtractsVisibleText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		fmt.Fprint(w, jobPage())
	}))
	defer srv.Close()

	text, err := JobDescription(context.Background(), srv.URL, false)
	require.NoError(t, err)
	assert.Contains(t, text, "Backend Engineer")
	assert.Contains(t, text, "Python and SQL experience")
	assert.NotContains(t, text, "trackVisit")
	assert.NotContains(t, text, "color:blue")
}

func TestJobDescription_InvalidURL(t *testing.T) {
	_, err := JobDescription(context.Background(), "not-a-url", false)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Message, "invalid URL")
}

func TestJobDescription_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := JobDescription(context.Background(), srv.URL, false)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Message, "unexpected status 404")
}

func TestJobDescription_UnreachableHost(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	_, err := JobDescription(context.Background(), srv.URL, false)
	var ferr *Error
	require.ErrorAs(t, err, &ferr)
	assert.Contains(t, ferr.Message, "request failed")
}

func TestShouldRender_ThinContentOnly(t *testing.T) {
	assert.True(t, shouldRender("almost nothing"))
	assert.False(t, shouldRender(strings.Repeat("plenty of visible body text ", 30)))
}

func TestHTMLToText_CollapsesWhitespace(t *testing.T) {
	got := htmlToText("<body><p>one</p>\n\n<p>two   three</p></body>")
	assert.Equal(t, "one two three", got)
	assert.Equal(t, "", htmlToText(""))
}
