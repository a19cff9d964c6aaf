package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestNewClamps(t *testing.T) {
	assert.Equal(t, Params{Page: 1, Limit: 20}, New(0, 0))
	assert.Equal(t, Params{Page: 3, Limit: 100}, New(3, 500))
}

func TestOffsetAndTotalPages(t *testing.T) {
	p := New(3, 10)

	assert.Equal(t, 20, p.Offset())
	assert.Equal(t, 0, p.TotalPages(0))
	assert.Equal(t, 1, p.TotalPages(10))
	assert.Equal(t, 3, p.TotalPages(21))
}

func TestFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/families?page=2&limit=abc", nil)

	assert.Equal(t, Params{Page: 2, Limit: DefaultLimit}, FromContext(c))
}

func TestHugePageKeepsOffsetPositive(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/families?page=922337203685477581&limit=100", nil)

	p := FromContext(c)
	assert.Equal(t, MaxPage, p.Page)
	assert.Positive(t, p.Offset())
}
