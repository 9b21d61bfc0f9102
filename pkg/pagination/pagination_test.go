package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func ctxWithQuery(query string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return c
}

func TestParse(t *testing.T) {
	cases := []struct {
		name       string
		query      string
		wantPage   int
		wantLimit  int
		wantOffset int
	}{
		{"defaults", "", 1, 20, 0},
		{"explicit", "page=3&limit=10", 3, 10, 20},
		{"zero page", "page=0", 1, 20, 0},
		{"negative limit", "limit=-5", 1, 20, 0},
		{"limit capped", "limit=1000", 1, 100, 0},
		{"garbage", "page=abc&limit=xyz", 1, 20, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := Parse(ctxWithQuery(tc.query))
			if p.Page != tc.wantPage || p.Limit != tc.wantLimit || p.Offset() != tc.wantOffset {
				t.Errorf("Parse(%q) = %+v, want page=%d limit=%d offset=%d",
					tc.query, p, tc.wantPage, tc.wantLimit, tc.wantOffset)
			}
		})
	}
}
