package handlers

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tm-acme-shop/acme-shop-tax-service/internal/errors"
	"github.com/tm-acme-shop/acme-shop-tax-service/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

const indexTemplate = "index.html"

type indexPage struct {
	SalaryInput     string
	DeductionsInput string
	Result          *models.TaxResult
	Error           string
}

// Templates parses the embedded HTML templates.
func Templates() *template.Template {
	return template.Must(template.New("").Funcs(template.FuncMap{
		"money": func(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) },
	}).ParseFS(templateFS, "templates/*.html"))
}

// Index handles GET /
func (h *Handlers) Index(c *gin.Context) {
	c.HTML(http.StatusOK, indexTemplate, indexPage{})
}

// SubmitIndex handles POST / from the salary form.
func (h *Handlers) SubmitIndex(c *gin.Context) {
	page := indexPage{
		SalaryInput:     c.PostForm("salary"),
		DeductionsInput: c.PostForm("deductions"),
	}

	gross, err := parseAmount("salary", page.SalaryInput, true)
	if err == nil {
		var deductions float64
		deductions, err = parseAmount("deductions", page.DeductionsInput, false)
		if err == nil {
			page.Result, err = h.taxService.Calculate(c.Request.Context(), &models.CalculateTaxRequest{
				GrossSalary: &gross,
				Deductions:  deductions,
			})
		}
	}

	if err != nil {
		status := http.StatusInternalServerError
		page.Error = "could not calculate tax"
		if v, ok := errors.AsValidation(err); ok {
			status = http.StatusBadRequest
			page.Error = v.Error()
		}
		c.HTML(status, indexTemplate, page)
		return
	}

	c.HTML(http.StatusOK, indexTemplate, page)
}
