package errors_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/labstack/echo/v4"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/kimm528/ringfitmanager/errors"
)

var _ = Describe("Errors", func() {
	It("resolves the status of wrapped errors", func() {
		err := fmt.Errorf("user %w", errors.NotFound)
		Expect(errors.StatusCode(err)).To(Equal(http.StatusNotFound))
		Expect(errors.StatusCode(fmt.Errorf("plain"))).To(Equal(http.StatusInternalServerError))
	})

	It("renders wrapped errors with their status code", func() {
		e := echo.New()
		rec := httptest.NewRecorder()
		c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

		errors.CustomHTTPErrorHandler(fmt.Errorf("device %w", errors.NotFound), c)

		Expect(rec.Code).To(Equal(http.StatusNotFound))
		Expect(rec.Body.String()).To(ContainSubstring("device not found"))
	})
})
