package shipment

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	domainShipment "shipment-tracker/internal/domain/shipment"
	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/pkg/utils"
)

func init() {
	utils.RegisterValidation("shipment_status", func(value string) bool {
		return domainShipment.Status(value).IsValid()
	})
}

// ValidateParties checks that the referenced users exist and that an
// assigned driver has the driver role.
func ValidateParties(ctx context.Context, userRepo domainUser.Repository, senderID, receiverID *uuid.UUID, driverID *uuid.UUID) error {
	for _, party := range []struct {
		name string
		id   *uuid.UUID
	}{
		{"sender", senderID},
		{"receiver", receiverID},
	} {
		if party.id == nil {
			continue
		}
		if _, err := lookupParty(ctx, userRepo, party.name, *party.id); err != nil {
			return err
		}
	}

	if driverID != nil {
		driver, err := lookupParty(ctx, userRepo, "driver", *driverID)
		if err != nil {
			return err
		}
		if driver.Role != domainUser.RoleDriver {
			return fmt.Errorf("%w: user %s is not a driver", domainShipment.ErrInvalidParty, *driverID)
		}
	}

	return nil
}

func lookupParty(ctx context.Context, userRepo domainUser.Repository, name string, id uuid.UUID) (*domainUser.User, error) {
	u, err := userRepo.GetByID(ctx, id)
	if errors.Is(err, domainUser.ErrUserNotFound) {
		return nil, fmt.Errorf("%w: %s %s", domainShipment.ErrInvalidParty, name, id)
	}
	return u, err
}
