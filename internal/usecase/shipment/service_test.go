package shipment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-tracker/internal/domain/reading"
	domainShipment "shipment-tracker/internal/domain/shipment"
	domainUser "shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/testutil"
	appErrors "shipment-tracker/pkg/errors"
)

type fixture struct {
	svc      *Service
	users    *postgres.UserRepository
	readings *postgres.ReadingRepository
}

func newFixture(t *testing.T, enforceTransitions bool) *fixture {
	db := testutil.NewDB(t)
	cfg := testutil.Config()
	cfg.Shipment.EnforceTransitions = enforceTransitions

	users := postgres.NewUserRepository(db)
	return &fixture{
		svc:      NewService(postgres.NewShipmentRepository(db), users, db, cfg),
		users:    users,
		readings: postgres.NewReadingRepository(db),
	}
}

func (f *fixture) user(t *testing.T, name string, role domainUser.Role) *domainUser.User {
	t.Helper()
	u := &domainUser.User{Username: name, PasswordHashed: "x", Role: role}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

func (f *fixture) shipment(t *testing.T, number string, sender, receiver *domainUser.User, driver *domainUser.User) *ShipmentResponse {
	t.Helper()
	req := &CreateShipmentRequest{ShipmentNumber: number, SenderID: sender.ID, ReceiverID: receiver.ID}
	if driver != nil {
		req.DriverID = &driver.ID
	}
	resp, err := f.svc.Create(context.Background(), testAdmin, req)
	require.NoError(t, err)
	return resp
}

var testAdmin = &domainUser.User{ID: uuid.New(), Username: "admin", Role: domainUser.RoleAdmin}

func intPtr(v int) *int       { return &v }
func strPtr(v string) *string { return &v }

func numbers(list []*ShipmentResponse) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = s.ShipmentNumber
	}
	return out
}

func TestCreate_RoundTrip(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	sender := f.user(t, "sender", domainUser.RoleCustomer)
	receiver := f.user(t, "receiver", domainUser.RoleCustomer)
	driver := f.user(t, "driver", domainUser.RoleDriver)
	sensor := uuid.New()
	admin := &domainUser.User{ID: uuid.New(), Role: domainUser.RoleAdmin}

	created, err := f.svc.Create(ctx, testAdmin, &CreateShipmentRequest{
		ShipmentNumber:  "SHP-100",
		SenderID:        sender.ID,
		ReceiverID:      receiver.ID,
		DriverID:        &driver.ID,
		SensorUnitID:    &sensor,
		MinTemp:         intPtr(-20),
		MaxTemp:         intPtr(8),
		MinHumidity:     intPtr(10),
		MaxHumidity:     intPtr(90),
		DeliveryAddress: strPtr("Dock 4"),
		PickupAddress:   strPtr("Warehouse 1"),
	})
	require.NoError(t, err)
	assert.Equal(t, "created", created.Status)

	fetched, err := f.svc.Get(ctx, admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ShipmentNumber, fetched.ShipmentNumber)
	assert.Equal(t, created.SenderID, fetched.SenderID)
	assert.Equal(t, created.ReceiverID, fetched.ReceiverID)
	assert.Equal(t, created.DriverID, fetched.DriverID)
	assert.Equal(t, created.SensorUnitID, fetched.SensorUnitID)
	assert.Equal(t, created.MinTemp, fetched.MinTemp)
	assert.Equal(t, created.MaxTemp, fetched.MaxTemp)
	assert.Equal(t, created.MinHumidity, fetched.MinHumidity)
	assert.Equal(t, created.MaxHumidity, fetched.MaxHumidity)
	assert.Equal(t, created.DeliveryAddress, fetched.DeliveryAddress)
	assert.Equal(t, created.PickupAddress, fetched.PickupAddress)
}

func TestCreate_Bounds(t *testing.T) {
	f := newFixture(t, false)
	sender := f.user(t, "sender", domainUser.RoleCustomer)
	receiver := f.user(t, "receiver", domainUser.RoleCustomer)

	tests := []struct {
		name    string
		mutate  func(r *CreateShipmentRequest)
		wantErr bool
	}{
		{"min temp too low", func(r *CreateShipmentRequest) { r.MinTemp = intPtr(-200) }, true},
		{"max temp too high", func(r *CreateShipmentRequest) { r.MaxTemp = intPtr(101) }, true},
		{"humidity above 100", func(r *CreateShipmentRequest) { r.MaxHumidity = intPtr(150) }, true},
		{"negative humidity", func(r *CreateShipmentRequest) { r.MinHumidity = intPtr(-1) }, true},
		{"blank address", func(r *CreateShipmentRequest) { r.DeliveryAddress = strPtr("   ") }, true},
		{"unknown status", func(r *CreateShipmentRequest) { r.Status = strPtr("lost") }, true},
		{"min above max is allowed", func(r *CreateShipmentRequest) { r.MinTemp, r.MaxTemp = intPtr(30), intPtr(-30) }, false},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := &CreateShipmentRequest{
				ShipmentNumber: "SHP-" + string(rune('A'+i)),
				SenderID:       sender.ID,
				ReceiverID:     receiver.ID,
			}
			tt.mutate(req)

			_, err := f.svc.Create(context.Background(), testAdmin, req)
			if tt.wantErr {
				assert.True(t, appErrors.IsCode(err, appErrors.CodeValidation), "got %v", err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCreate_UnknownParty(t *testing.T) {
	f := newFixture(t, false)
	sender := f.user(t, "sender", domainUser.RoleCustomer)
	customer := f.user(t, "customer", domainUser.RoleCustomer)

	_, err := f.svc.Create(context.Background(), testAdmin, &CreateShipmentRequest{
		ShipmentNumber: "SHP-1", SenderID: sender.ID, ReceiverID: uuid.New(),
	})
	assert.ErrorIs(t, err, domainShipment.ErrInvalidParty)

	_, err = f.svc.Create(context.Background(), testAdmin, &CreateShipmentRequest{
		ShipmentNumber: "SHP-2", SenderID: sender.ID, ReceiverID: customer.ID, DriverID: &customer.ID,
	})
	assert.ErrorIs(t, err, domainShipment.ErrInvalidParty)
}

func TestCreate_CustomerMustBeParty(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	creator := f.user(t, "creator", domainUser.RoleCustomer)
	sender := f.user(t, "sender", domainUser.RoleCustomer)
	receiver := f.user(t, "receiver", domainUser.RoleCustomer)

	_, err := f.svc.Create(ctx, creator, &CreateShipmentRequest{ShipmentNumber: "SHP-1", SenderID: sender.ID, ReceiverID: receiver.ID})
	assert.ErrorIs(t, err, appErrors.ErrInsufficientPermissions)

	all, err := f.svc.ListAll(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, all)

	for i, req := range []*CreateShipmentRequest{
		{ShipmentNumber: "SHP-2", SenderID: creator.ID, ReceiverID: receiver.ID},
		{ShipmentNumber: "SHP-3", SenderID: sender.ID, ReceiverID: creator.ID},
	} {
		created, err := f.svc.Create(ctx, creator, req)
		require.NoError(t, err, "request %d", i)

		fetched, err := f.svc.Get(ctx, creator, created.ID)
		require.NoError(t, err)
		assert.Equal(t, req.ShipmentNumber, fetched.ShipmentNumber)
	}
}

func TestCreate_DuplicateNumber(t *testing.T) {
	f := newFixture(t, false)
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	f.shipment(t, "SHP-1", a, b, nil)

	_, err := f.svc.Create(context.Background(), testAdmin, &CreateShipmentRequest{ShipmentNumber: "SHP-1", SenderID: a.ID, ReceiverID: b.ID})
	assert.ErrorIs(t, err, domainShipment.ErrShipmentAlreadyExists)
}

func TestListMine_RoleFilter(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	u1 := f.user(t, "u1", domainUser.RoleCustomer)
	other := f.user(t, "other", domainUser.RoleCustomer)
	d1 := f.user(t, "d1", domainUser.RoleDriver)
	admin := f.user(t, "admin", domainUser.RoleAdmin)

	f.shipment(t, "A", u1, other, nil)
	f.shipment(t, "B", other, u1, d1)
	f.shipment(t, "C", other, other, d1)

	customerView, err := f.svc.ListMine(ctx, u1, 0, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B"}, numbers(customerView))

	driverView, err := f.svc.ListMine(ctx, d1, 0, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, numbers(driverView))

	adminMine, err := f.svc.ListMine(ctx, admin, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, adminMine)

	all, err := f.svc.ListAll(ctx, 0, 100)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, numbers(all))

	page, err := f.svc.ListAll(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)
}

func TestGet_HiddenFromStrangers(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	stranger := f.user(t, "stranger", domainUser.RoleCustomer)
	s := f.shipment(t, "SHP-1", a, b, nil)

	_, err := f.svc.Get(ctx, b, s.ID)
	assert.NoError(t, err)

	_, err = f.svc.Get(ctx, stranger, s.ID)
	assert.ErrorIs(t, err, domainShipment.ErrShipmentNotFound)
}

func TestListWithLatestValues_UsesNewestReading(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	sensor := uuid.New()

	created, err := f.svc.Create(ctx, testAdmin, &CreateShipmentRequest{ShipmentNumber: "SHP-1", SenderID: a.ID, ReceiverID: b.ID, SensorUnitID: &sensor})
	require.NoError(t, err)
	f.shipment(t, "SHP-2", a, b, nil)

	t1 := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(10 * time.Minute)
	controlUnit := uuid.New()
	require.NoError(t, f.readings.Create(ctx, &reading.Reading{SensorUnitID: sensor, ControlUnitID: controlUnit, Timestamp: t1,
		Temperature: reading.Measurement{Value: 2}, Humidity: reading.Measurement{Value: 20}}))
	require.NoError(t, f.readings.Create(ctx, &reading.Reading{SensorUnitID: sensor, ControlUnitID: controlUnit, Timestamp: t2,
		Temperature: reading.Measurement{Value: 7}, Humidity: reading.Measurement{Value: 70}}))

	all, err := f.svc.ListAllWithLatestValues(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, s := range all {
		if s.ID == created.ID {
			require.NotNil(t, s.Temperature)
			assert.Equal(t, 7.0, *s.Temperature)
			assert.Equal(t, 70.0, *s.Humidity)
			continue
		}
		assert.Nil(t, s.Temperature)
		assert.Nil(t, s.Humidity)
	}

	mine, err := f.svc.ListMineWithLatestValues(ctx, a, 0, 100)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	one, err := f.svc.GetWithLatestValues(ctx, b, created.ID)
	require.NoError(t, err)
	require.NotNil(t, one.Temperature)
	assert.Equal(t, 7.0, *one.Temperature)
}

func TestUpdateDriverAndStatus(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	d := f.user(t, "d", domainUser.RoleDriver)
	s := f.shipment(t, "SHP-1", a, b, nil)

	updated, err := f.svc.UpdateDriverAndStatus(ctx, s.ID, &d.ID, strPtr("assigned"))
	require.NoError(t, err)
	require.NotNil(t, updated.DriverID)
	assert.Equal(t, d.ID, *updated.DriverID)
	assert.Equal(t, "assigned", updated.Status)

	unchanged, err := f.svc.UpdateDriverAndStatus(ctx, s.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, d.ID, *unchanged.DriverID)

	_, err = f.svc.UpdateDriverAndStatus(ctx, s.ID, nil, strPtr("lost"))
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidStatus))

	_, err = f.svc.UpdateDriverAndStatus(ctx, uuid.New(), &d.ID, nil)
	assert.ErrorIs(t, err, domainShipment.ErrShipmentNotFound)
}

func TestUpdateAll(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	s := f.shipment(t, "SHP-1", a, b, nil)

	_, err := f.svc.UpdateAll(ctx, s.ID, &UpdateShipmentRequest{})
	assert.True(t, appErrors.IsCode(err, appErrors.CodeEmptyUpdate))

	updated, err := f.svc.UpdateAll(ctx, s.ID, &UpdateShipmentRequest{MaxTemp: intPtr(5), Status: strPtr("delivered")})
	require.NoError(t, err)
	assert.Equal(t, 5, *updated.MaxTemp)
	assert.Equal(t, "delivered", updated.Status)
	assert.Equal(t, "SHP-1", updated.ShipmentNumber)

	back, err := f.svc.UpdateAll(ctx, s.ID, &UpdateShipmentRequest{Status: strPtr("created")})
	require.NoError(t, err)
	assert.Equal(t, "created", back.Status)

	_, err = f.svc.UpdateAll(ctx, s.ID, &UpdateShipmentRequest{MinTemp: intPtr(-200)})
	assert.True(t, appErrors.IsCode(err, appErrors.CodeValidation))

	_, err = f.svc.UpdateAll(ctx, uuid.New(), &UpdateShipmentRequest{MaxTemp: intPtr(5)})
	assert.ErrorIs(t, err, domainShipment.ErrShipmentNotFound)
}

func TestUpdate_EnforcedTransitions(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	s := f.shipment(t, "SHP-1", a, b, nil)

	_, err := f.svc.UpdateAll(ctx, s.ID, &UpdateShipmentRequest{Status: strPtr("delivered")})
	assert.True(t, appErrors.IsCode(err, appErrors.CodeInvalidTransition))

	_, err = f.svc.UpdateDriverAndStatus(ctx, s.ID, nil, strPtr("assigned"))
	require.NoError(t, err)
}

func TestDelete(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	a := f.user(t, "a", domainUser.RoleCustomer)
	b := f.user(t, "b", domainUser.RoleCustomer)
	admin := f.user(t, "admin", domainUser.RoleAdmin)
	s := f.shipment(t, "SHP-1", a, b, nil)

	deleted, err := f.svc.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, deleted.ID)

	_, err = f.svc.Get(ctx, admin, s.ID)
	assert.ErrorIs(t, err, domainShipment.ErrShipmentNotFound)
}
