package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shipment-tracker/internal/domain/reading"
	"shipment-tracker/internal/domain/shipment"
	"shipment-tracker/internal/domain/user"
	"shipment-tracker/internal/infrastructure/database/postgres"
	"shipment-tracker/internal/testutil"
)

type repos struct {
	db        *postgres.DB
	users     *postgres.UserRepository
	shipments *postgres.ShipmentRepository
	readings  *postgres.ReadingRepository
}

func newRepos(t *testing.T) repos {
	db := testutil.NewDB(t)
	return repos{
		db:        db,
		users:     postgres.NewUserRepository(db),
		shipments: postgres.NewShipmentRepository(db),
		readings:  postgres.NewReadingRepository(db),
	}
}

func createUser(t *testing.T, r repos, username string, role user.Role) *user.User {
	t.Helper()
	u := &user.User{Username: username, PasswordHashed: "hash", Role: role}
	require.NoError(t, r.users.Create(context.Background(), u))
	return u
}

func createShipment(t *testing.T, r repos, number string, sender, receiver uuid.UUID, driver, sensor *uuid.UUID) *shipment.Shipment {
	t.Helper()
	s := &shipment.Shipment{
		ShipmentNumber: number,
		SenderID:       sender,
		ReceiverID:     receiver,
		DriverID:       driver,
		SensorUnitID:   sensor,
	}
	require.NoError(t, r.shipments.Create(context.Background(), s))
	return s
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	u := createUser(t, r, "alice", user.RoleCustomer)
	assert.NotEqual(t, uuid.Nil, u.ID)

	byName, err := r.users.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byName.ID)
	assert.Equal(t, user.RoleCustomer, byName.Role)

	byID, err := r.users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.Username)

	_, err = r.users.GetByUsername(ctx, "nobody")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestUserRepository_DuplicateUsername(t *testing.T) {
	r := newRepos(t)
	createUser(t, r, "alice", user.RoleCustomer)

	err := r.users.Create(context.Background(), &user.User{Username: "alice", PasswordHashed: "x", Role: user.RoleDriver})
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)
}

func TestUserRepository_UpdateAndDelete(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	u := createUser(t, r, "alice", user.RoleCustomer)
	createUser(t, r, "bob", user.RoleCustomer)

	role := user.RoleAdmin
	updated, err := r.users.Update(ctx, u.ID, user.Changes{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, user.RoleAdmin, updated.Role)
	assert.Equal(t, "alice", updated.Username)

	taken := "bob"
	_, err = r.users.Update(ctx, u.ID, user.Changes{Username: &taken})
	assert.ErrorIs(t, err, user.ErrUserAlreadyExists)

	_, err = r.users.Update(ctx, uuid.New(), user.Changes{Role: &role})
	assert.ErrorIs(t, err, user.ErrUserNotFound)

	require.NoError(t, r.users.Delete(ctx, u.ID))
	assert.ErrorIs(t, r.users.Delete(ctx, u.ID), user.ErrUserNotFound)
}

func TestUserRepository_ListPaginates(t *testing.T) {
	r := newRepos(t)
	for _, name := range []string{"a", "b", "c"} {
		createUser(t, r, name, user.RoleCustomer)
	}

	page, err := r.users.List(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.Len(t, page, 1)

	all, err := r.users.List(context.Background(), 0, 100)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestShipmentRepository_DuplicateNumber(t *testing.T) {
	r := newRepos(t)
	a := createUser(t, r, "a", user.RoleCustomer)
	b := createUser(t, r, "b", user.RoleCustomer)
	createShipment(t, r, "SHP-1", a.ID, b.ID, nil, nil)

	err := r.shipments.Create(context.Background(), &shipment.Shipment{ShipmentNumber: "SHP-1", SenderID: a.ID, ReceiverID: b.ID})
	assert.ErrorIs(t, err, shipment.ErrShipmentAlreadyExists)
}

func TestShipmentRepository_RoleFilters(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	a := createUser(t, r, "a", user.RoleCustomer)
	b := createUser(t, r, "b", user.RoleCustomer)
	c := createUser(t, r, "c", user.RoleCustomer)
	d := createUser(t, r, "d", user.RoleDriver)

	createShipment(t, r, "SHP-AB", a.ID, b.ID, &d.ID, nil)
	createShipment(t, r, "SHP-BC", b.ID, c.ID, nil, nil)

	forA, err := r.shipments.List(ctx, shipment.Filter{SenderOrReceiverID: &a.ID, Limit: 100})
	require.NoError(t, err)
	require.Len(t, forA, 1)
	assert.Equal(t, "SHP-AB", forA[0].ShipmentNumber)

	forB, err := r.shipments.List(ctx, shipment.Filter{SenderOrReceiverID: &b.ID, Limit: 100})
	require.NoError(t, err)
	assert.Len(t, forB, 2)

	forC, err := r.shipments.List(ctx, shipment.Filter{SenderOrReceiverID: &c.ID, Limit: 100})
	require.NoError(t, err)
	require.Len(t, forC, 1)
	assert.Equal(t, "SHP-BC", forC[0].ShipmentNumber)

	forDriver, err := r.shipments.List(ctx, shipment.Filter{DriverID: &d.ID, Limit: 100})
	require.NoError(t, err)
	require.Len(t, forDriver, 1)
	assert.Equal(t, "SHP-AB", forDriver[0].ShipmentNumber)

	all, err := r.shipments.List(ctx, shipment.Filter{Limit: 100})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestShipmentRepository_LatestValues(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()

	a := createUser(t, r, "a", user.RoleCustomer)
	b := createUser(t, r, "b", user.RoleCustomer)
	sensor := uuid.New()
	other := uuid.New()
	controlUnit := uuid.New()

	withSensor := createShipment(t, r, "SHP-1", a.ID, b.ID, nil, &sensor)
	withoutReadings := createShipment(t, r, "SHP-2", a.ID, b.ID, nil, &other)
	noSensor := createShipment(t, r, "SHP-3", a.ID, b.ID, nil, nil)

	t1 := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Minute)
	require.NoError(t, r.readings.CreateBatch(ctx, []*reading.Reading{
		{SensorUnitID: sensor, ControlUnitID: controlUnit, Timestamp: t2, Temperature: reading.Measurement{Value: 5.5}, Humidity: reading.Measurement{Value: 60}},
		{SensorUnitID: sensor, ControlUnitID: controlUnit, Timestamp: t1, Temperature: reading.Measurement{Value: 1.5}, Humidity: reading.Measurement{Value: 40}},
	}))

	got, err := r.shipments.GetWithLatestValues(ctx, withSensor.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Temperature)
	require.NotNil(t, got.Humidity)
	assert.Equal(t, 5.5, got.Temperature.Value)
	assert.Equal(t, 60.0, got.Humidity.Value)
	assert.Equal(t, "SHP-1", got.ShipmentNumber)

	empty, err := r.shipments.GetWithLatestValues(ctx, withoutReadings.ID)
	require.NoError(t, err)
	assert.Nil(t, empty.Temperature)
	assert.Nil(t, empty.Humidity)

	list, err := r.shipments.ListWithLatestValues(ctx, shipment.Filter{Limit: 100})
	require.NoError(t, err)
	require.Len(t, list, 3)
	byID := map[uuid.UUID]*shipment.WithLatestValues{}
	for _, s := range list {
		byID[s.ID] = s
	}
	require.NotNil(t, byID[withSensor.ID].Temperature)
	assert.Equal(t, 5.5, byID[withSensor.ID].Temperature.Value)
	assert.Nil(t, byID[noSensor.ID].Temperature)

	_, err = r.shipments.GetWithLatestValues(ctx, uuid.New())
	assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
}

func TestShipmentRepository_UpdateAndDelete(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	a := createUser(t, r, "a", user.RoleCustomer)
	b := createUser(t, r, "b", user.RoleCustomer)
	s := createShipment(t, r, "SHP-1", a.ID, b.ID, nil, nil)
	assert.Equal(t, shipment.StatusCreated, s.Status)

	status := shipment.StatusInTransit
	maxTemp := 8
	updated, err := r.shipments.Update(ctx, s.ID, shipment.Changes{Status: &status, MaxTemp: &maxTemp})
	require.NoError(t, err)
	assert.Equal(t, shipment.StatusInTransit, updated.Status)
	require.NotNil(t, updated.MaxTemp)
	assert.Equal(t, 8, *updated.MaxTemp)
	assert.Equal(t, "SHP-1", updated.ShipmentNumber)

	deleted, err := r.shipments.Delete(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, deleted.ID)

	_, err = r.shipments.GetByID(ctx, s.ID)
	assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)

	_, err = r.shipments.Delete(ctx, s.ID)
	assert.ErrorIs(t, err, shipment.ErrShipmentNotFound)
}

func TestReadingRepository_CreateBatchStoresAll(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	controlUnit := uuid.New()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	var batch []*reading.Reading
	for i := 0; i < 5; i++ {
		batch = append(batch, &reading.Reading{
			SensorUnitID:  uuid.New(),
			ControlUnitID: controlUnit,
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			Temperature:   reading.Measurement{Value: float64(i)},
			Humidity:      reading.Measurement{Value: 50},
		})
	}
	require.NoError(t, r.readings.CreateBatch(ctx, batch))

	stored, err := r.readings.List(ctx, 0, 100)
	require.NoError(t, err)
	require.Len(t, stored, 5)
	assert.Equal(t, 0.0, stored[0].Temperature.Value)
	assert.Equal(t, 4.0, stored[4].Temperature.Value)
	assert.True(t, stored[0].Timestamp.Equal(base))
}

func TestReadingRepository_CreateBatchIsAtomic(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	dup := uuid.New()

	first := &reading.Reading{ID: dup, SensorUnitID: uuid.New(), ControlUnitID: uuid.New(), Timestamp: time.Now()}
	second := &reading.Reading{ID: dup, SensorUnitID: uuid.New(), ControlUnitID: uuid.New(), Timestamp: time.Now()}

	err := r.readings.CreateBatch(ctx, []*reading.Reading{first, second})
	require.Error(t, err)

	stored, err := r.readings.List(ctx, 0, 100)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestWithinTransaction_RollsBackOnError(t *testing.T) {
	r := newRepos(t)
	boom := errors.New("boom")

	err := r.db.WithinTransaction(context.Background(), func(ctx context.Context) error {
		require.NoError(t, r.users.Create(ctx, &user.User{Username: "ghost", PasswordHashed: "x", Role: user.RoleCustomer}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = r.users.GetByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, user.ErrUserNotFound)
}

func TestReadingRepository_UpdateDelete(t *testing.T) {
	r := newRepos(t)
	ctx := context.Background()
	rd := &reading.Reading{
		SensorUnitID:  uuid.New(),
		ControlUnitID: uuid.New(),
		Timestamp:     time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Temperature:   reading.Measurement{Value: 3},
		Humidity:      reading.Measurement{Value: 30},
	}
	require.NoError(t, r.readings.Create(ctx, rd))

	temp := reading.Measurement{Value: -4.25}
	updated, err := r.readings.Update(ctx, rd.ID, reading.Changes{Temperature: &temp})
	require.NoError(t, err)
	assert.Equal(t, -4.25, updated.Temperature.Value)
	assert.Equal(t, 30.0, updated.Humidity.Value)

	require.NoError(t, r.readings.Delete(ctx, rd.ID))
	_, err = r.readings.GetByID(ctx, rd.ID)
	assert.ErrorIs(t, err, reading.ErrReadingNotFound)
	assert.ErrorIs(t, r.readings.Delete(ctx, rd.ID), reading.ErrReadingNotFound)
}
