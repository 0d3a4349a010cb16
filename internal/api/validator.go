package api

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var bodyTypes = map[string]struct{}{
	"sedan": {}, "suv": {}, "hatchback": {}, "coupe": {}, "convertible": {},
	"wagon": {}, "van": {}, "truck": {}, "other": {},
}

var fuelTypes = map[string]struct{}{
	"gasoline": {}, "diesel": {}, "electric": {}, "hybrid": {}, "plugin_hybrid": {}, "other": {},
}

var transmissions = map[string]struct{}{
	"automatic": {}, "manual": {}, "semi_automatic": {}, "cvt": {},
}

// registerValidations 在 gin 的 binding 引擎上挂车源枚举校验
func registerValidations() {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return
	}
	_ = v.RegisterValidation("bodytype", enumOf(bodyTypes))
	_ = v.RegisterValidation("fueltype", enumOf(fuelTypes))
	_ = v.RegisterValidation("transmission", enumOf(transmissions))
}

func enumOf(valid map[string]struct{}) validator.Func {
	return func(fl validator.FieldLevel) bool {
		_, ok := valid[fl.Field().String()]
		return ok
	}
}
