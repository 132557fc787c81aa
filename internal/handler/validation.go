package handler

import (
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/weiawesome/openjob/internal/domain"
)

var registerOnce sync.Once

// registerValidators adds the cross-field rules gin's tag validation
// cannot express.
func registerValidators() {
	registerOnce.Do(func() {
		if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
			v.RegisterStructValidation(validateSalaryRange, domain.SearchRequest{})
		}
	})
}

func validateSalaryRange(sl validator.StructLevel) {
	req, ok := sl.Current().Interface().(domain.SearchRequest)
	if !ok {
		return
	}
	if req.SalaryFrom != nil && req.SalaryTo != nil && *req.SalaryFrom > *req.SalaryTo {
		sl.ReportError(req.SalaryTo, "SalaryTo", "salaryTo", "gtefield", "SalaryFrom")
	}
}
