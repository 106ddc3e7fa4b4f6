package legacy

import (
	"errors"
	"strings"
	"time"

	"carrental-backend/internal/models"
	"carrental-backend/internal/rental"
)

var ErrMissingID = errors.New("legacy record has no id")

// Decoder turns legacy records into local models. Times without an offset
// are read in Zone; bare status numbers follow Scheme.
type Decoder struct {
	Zone   *time.Location
	Scheme rental.Scheme
}

// CarRecord keeps the legacy location reference until it is mapped to a
// local id.
type CarRecord struct {
	Car              models.Car
	LegacyLocationID int64
}

func (d Decoder) Car(r Record) (CarRecord, error) {
	id := r.Int("id", "carId")
	if id <= 0 {
		return CarRecord{}, ErrMissingID
	}

	car := models.Car{
		Name:         r.String("name", "carName"),
		Brand:        r.String("brand", "make"),
		Model:        r.String("model"),
		LicensePlate: r.String("licensePlate", "plate", "plateNumber"),
		Seats:        int(r.Int("seats", "seat", "numberOfSeats")),
		ImageURL:     r.String("imageUrl", "image", "thumbnail"),
		Status:       carStatus(r),
		LegacyID:     &id,

		Price4h:               r.Float("price4h", "pricePer4Hour", "price4Hour"),
		Price8h:               r.Float("price8h", "pricePer8Hour", "price8Hour"),
		PricePerDay:           r.Float("pricePerDay", "price24h", "dailyPrice"),
		Price4hWithDriver:     r.Float("price4hWithDriver", "pricePer4HourWithDriver", "price4HourWithDriver"),
		Price8hWithDriver:     r.Float("price8hWithDriver", "pricePer8HourWithDriver", "price8HourWithDriver"),
		PricePerDayWithDriver: r.Float("pricePerDayWithDriver", "price24hWithDriver", "dailyPriceWithDriver"),
	}
	if car.Name == "" {
		car.Name = strings.TrimSpace(car.Brand + " " + car.Model)
	}
	return CarRecord{Car: car, LegacyLocationID: r.Int("rentalLocationId", "locationId")}, nil
}

func carStatus(r Record) string {
	if !r.Bool(true, "isActive", "active") || r.Bool(false, "isDeleted") {
		return "retired"
	}
	switch strings.ToLower(r.String("status", "carStatus")) {
	case "maintenance", "repairing", "unavailable", "inactive":
		return "maintenance"
	case "retired", "deleted":
		return "retired"
	default:
		return "available"
	}
}

func (d Decoder) Location(r Record) (models.RentalLocation, error) {
	id := r.Int("id", "rentalLocationId", "locationId")
	if id <= 0 {
		return models.RentalLocation{}, ErrMissingID
	}
	return models.RentalLocation{
		Name:     r.String("name", "locationName"),
		Address:  r.String("address"),
		Phone:    r.String("phone", "phoneNumber", "hotline"),
		IsActive: r.Bool(true, "isActive", "active"),
		LegacyID: &id,
	}, nil
}

// OrderRecord carries the legacy references of an order alongside it.
type OrderRecord struct {
	Order            models.RentalOrder
	LegacyCarID      int64
	LegacyUserID     int64
	LegacyLocationID int64
}

func (d Decoder) Order(r Record) (OrderRecord, error) {
	id := r.Int("id", "orderId", "rentalOrderId")
	if id <= 0 {
		return OrderRecord{}, ErrMissingID
	}
	loc := d.Zone
	if loc == nil {
		loc = time.UTC
	}

	status, _ := r.Value("status", "orderStatus")
	o := models.RentalOrder{
		PhoneNumber: r.String("phoneNumber", "phone"),
		WithDriver:  r.Bool(false, "withDriver", "hasDriver"),
		Status:      rental.NormalizeWith(status, d.Scheme),
		SubTotal:    r.Float("subTotal", "subtotal", "rentalFee"),
		Deposit:     r.Float("deposit", "depositAmount"),
		Discount:    r.Float("discount"),
		ExtraFee:    r.Float("extraFee"),
		DamageFee:   r.Float("damageFee"),
		DamageNotes: r.String("damageNotes", "damageNote"),
		Total:       r.Float("total", "totalAmount"),
		LegacyID:    &id,
	}
	o.PickupTime, _ = r.Time(loc, "pickupTime", "startTime")
	o.ExpectedReturnTime, _ = r.Time(loc, "expectedReturnTime", "returnTime", "endTime")
	if t, ok := r.Time(loc, "actualReturnTime"); ok {
		o.ActualReturnTime = &t
	}
	o.OrderDate, _ = r.Time(loc, "orderDate")
	if t, ok := r.Time(loc, "createdAt", "createdDate"); ok {
		o.CreatedAt = t
	} else {
		o.CreatedAt = o.OrderDate
	}
	if o.Total == 0 {
		o.Total = rental.Total(o.SubTotal, o.Discount, o.ExtraFee, o.DamageFee)
	}

	return OrderRecord{
		Order:            o,
		LegacyCarID:      r.Int("carId"),
		LegacyUserID:     r.Int("userId", "customerId"),
		LegacyLocationID: r.Int("rentalLocationId", "locationId"),
	}, nil
}
