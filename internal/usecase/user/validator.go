package user

import (
	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/pkg/utils"
)

func init() {
	utils.RegisterValidation("user_role", func(value string) bool {
		return domainUser.Role(value).IsValid()
	})
}
