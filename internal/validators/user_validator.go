package validators

import (
	"strings"
)

type RegisterRequest struct {
	UserType    string `json:"userType" form:"userType" validate:"required,oneof=citizen police"`
	Name        string `json:"name" form:"name" validate:"required,min=2,max=100"`
	Phone       string `json:"phone" form:"phone" validate:"required_if=UserType citizen,phone_number"`
	Email       string `json:"email" form:"email" validate:"omitempty,email"`
	Address     string `json:"address" form:"address" validate:"required_if=UserType citizen,max=500"`
	Age         int    `json:"age" form:"age" validate:"omitempty,min=1,max=120"`
	AadharNo    string `json:"aadharNo" form:"aadharNo" validate:"omitempty,len=12,numeric"`
	Gender      string `json:"gender" form:"gender" validate:"omitempty,oneof=male female other"`
	StationName string `json:"stationName" form:"stationName" validate:"required_if=UserType police,max=200"`
	BatchNo     string `json:"batchNo" form:"batchNo" validate:"required_if=UserType police,max=50"`
	Password    string `json:"password" form:"password" validate:"required,min=6,max=128"`
}

type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required"`
	Password   string `json:"password" validate:"required"`
	UserType   string `json:"userType" validate:"required,oneof=citizen police"`
}

func ValidateRegister(req *RegisterRequest) ValidationErrors {
	req.UserType = strings.ToLower(strings.TrimSpace(req.UserType))
	req.Name = strings.TrimSpace(req.Name)
	req.Phone = normalizePhoneNumber(req.Phone)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Gender = strings.ToLower(strings.TrimSpace(req.Gender))
	req.AadharNo = strings.ReplaceAll(strings.TrimSpace(req.AadharNo), " ", "")
	req.BatchNo = strings.TrimSpace(req.BatchNo)
	req.StationName = strings.TrimSpace(req.StationName)
	req.Address = strings.TrimSpace(req.Address)

	return ValidateStruct(req)
}

func ValidateLogin(req *LoginRequest) ValidationErrors {
	req.UserType = strings.ToLower(strings.TrimSpace(req.UserType))
	req.Identifier = strings.TrimSpace(req.Identifier)
	if req.UserType == "citizen" {
		req.Identifier = normalizePhoneNumber(req.Identifier)
	}
	return ValidateStruct(req)
}

func normalizePhoneNumber(phone string) string {
	replacer := strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
	return replacer.Replace(strings.TrimSpace(phone))
}
