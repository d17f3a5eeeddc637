//-------------------------------------------------------------------------
//
// Tailor Warehouse ETL
//
// Copyright (c) 2025 - 2026, pgEdge, Inc.
// This software is released under The PostgreSQL License
//
//-------------------------------------------------------------------------

package datagen

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/tailorworks/tailor-etl/internal/warehouse"
)

// Reference data shared by every fake data set.
var (
	fakeMaterials = []struct {
		name, category string
		price          int64
	}{
		{"Premium Cotton", "Shirt", 45000},
		{"Denim", "Trousers", 60000},
		{"Linen", "Shirt", 75000},
		{"Wool Suiting", "Suit", 150000},
		{"Batik Silk", "Dress", 120000},
		{"Chiffon", "Dress", 40000},
		{"Twill", "Trousers", 55000},
		{"Songket", "Kebaya", 200000},
	}

	fakeServices = []struct {
		name  string
		price int64
		days  int
	}{
		{"Shirt Tailoring", 120000, 3},
		{"Trouser Tailoring", 100000, 2},
		{"Suit Tailoring", 450000, 10},
		{"Dress Tailoring", 250000, 5},
		{"Alteration", 35000, 1},
	}

	fakeStatuses = []struct {
		name, description string
	}{
		{"Pending", "Order has been received but not processed"},
		{"In Progress", "Order is currently being sewn"},
		{"Completed", "Order finished and ready for pickup"},
	}

	customerTypes   = []string{"Regular", "Member", "VIP"}
	referrals       = []string{"Instagram", "Google", "Family", "Friend", "Walk-in"}
	genders         = []string{"Male", "Female"}
	channels        = []string{"Online", "Offline", "WhatsApp"}
	garmentModels   = []string{"Formal", "Slim Fit", "Regular Fit", "Loose", "Bootcut"}
	paymentMethods  = []string{"Cash", "Transfer", "E-Wallet", "Card"}
	tailorSpecialty = []string{"Shirts and Trousers", "Dresses and Kebaya", "Suits", "Alterations"}
)

// fakeEpoch bounds generated order dates.
var (
	fakeStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	fakeEnd   = time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC)
)

func isoDate(t time.Time) *string {
	s := t.Format(time.DateOnly)
	return &s
}

// Generate produces a referentially consistent data set with the given
// number of orders. Every order has one to three lines and zero to two
// payments; completed orders carry a completion date and usually a rating.
func Generate(f *Faker, orders int) warehouse.Snapshot {
	var s warehouse.Snapshot
	if orders < 0 {
		orders = 0
	}

	customers := max(3, orders/3)
	for i := 1; i <= customers; i++ {
		s.Customers = append(s.Customers, warehouse.Customer{
			CustomerID:   int64(i),
			Name:         Truncate(f.Name(), 100),
			Phone:        str("08" + f.Digits(10)),
			Address:      Maybe(f, f.Street()+", "+f.City(), 0.1),
			Gender:       str(Choose(f, genders)),
			RegisteredOn: isoDate(f.DateRange(fakeStart.AddDate(-1, 0, 0), fakeStart)),
			CustomerType: str(ChooseWeighted(f, customerTypes, []int{70, 25, 5})),
			Referral:     Maybe(f, Choose(f, referrals), 0.2),
		})
	}

	tailors := max(2, orders/25)
	for i := 1; i <= tailors; i++ {
		s.Tailors = append(s.Tailors, warehouse.Tailor{
			TailorID:  int64(i),
			Name:      Truncate(f.Name(), 100),
			Specialty: str(Choose(f, tailorSpecialty)),
			StartedOn: isoDate(f.DateRange(fakeStart.AddDate(-5, 0, 0), fakeStart)),
			Status:    str(ChooseWeighted(f, []string{"Active", "On Leave"}, []int{9, 1})),
		})
	}

	for i, m := range fakeMaterials {
		s.Materials = append(s.Materials, warehouse.Material{
			MaterialID:    int64(i + 1),
			Name:          m.name,
			Category:      str(m.category),
			Supplier:      str(Truncate(f.Company(), 100)),
			PricePerMeter: num(m.price),
			StockMeters:   num(int64(f.Int(10, 200))),
			Unit:          str("meter"),
			ReceivedOn:    isoDate(f.DateRange(fakeStart, fakeEnd)),
			MinimumStock:  num(int64(f.Int(5, 15))),
		})
	}

	for i, v := range fakeServices {
		days := v.days
		s.Services = append(s.Services, warehouse.Service{
			ServiceID:     int64(i + 1),
			Name:          v.name,
			Description:   str(f.Sentence(6)),
			BasePrice:     num(v.price),
			EstimatedDays: &days,
		})
	}

	for i, st := range fakeStatuses {
		s.OrderStatuses = append(s.OrderStatuses, warehouse.OrderStatus{
			StatusID:    int64(i + 1),
			Name:        st.name,
			Description: str(st.description),
		})
	}

	var detailID, paymentID int64
	for i := 1; i <= orders; i++ {
		orderID := int64(i)
		svc := f.Int(0, len(fakeServices)-1)
		statusID := int64(ChooseWeighted(f, []int{1, 2, 3}, []int{15, 25, 60}))
		ordered := f.DateRange(fakeStart, fakeEnd)

		o := warehouse.Order{
			OrderID:             orderID,
			CustomerID:          int64(f.Int(1, customers)),
			TailorID:            int64(f.Int(1, tailors)),
			ServiceID:           int64(svc + 1),
			StatusID:            statusID,
			OrderDate:           *isoDate(ordered),
			EstimatedCompletion: isoDate(ordered.AddDate(0, 0, fakeServices[svc].days)),
			Channel:             str(Choose(f, channels)),
			PaymentStatus:       str("Pending"),
			CustomerNotes:       Maybe(f, f.Sentence(5), 0.5),
		}
		if statusID == 3 {
			o.CompletionDate = isoDate(ordered.AddDate(0, 0, f.Int(1, fakeServices[svc].days+3)))
			o.Rating = Maybe(f, f.Int(1, 5), 0.2)
		}

		total := decimal.NewFromInt(fakeServices[svc].price)
		lines := f.Int(1, 3)
		for l := 0; l < lines; l++ {
			detailID++
			mat := f.Int(0, len(fakeMaterials)-1)
			qty := decimal.NewFromFloat(f.Float64(0.5, 4)).Round(1)
			if qty.IsZero() {
				qty = decimal.NewFromInt(1)
			}
			price := decimal.NewFromInt(fakeMaterials[mat].price)
			subtotal := qty.Mul(price).Round(2)
			total = total.Add(subtotal)

			s.LineDetails = append(s.LineDetails, warehouse.OrderLineDetail{
				DetailID:       detailID,
				OrderID:        orderID,
				MaterialID:     int64(mat + 1),
				Color:          str(Truncate(f.Color(), 50)),
				GarmentModel:   str(Choose(f, garmentModels)),
				QuantityMeters: qty,
				PricePerMeter:  decimal.NewNullDecimal(price),
				Subtotal:       decimal.NewNullDecimal(subtotal),
				TailorNotes:    Maybe(f, f.Sentence(4), 0.6),
			})
		}
		o.TotalPrice = total

		payments := ChooseWeighted(f, []int{0, 1, 2}, []int{10, 75, 15})
		for p := 0; p < payments; p++ {
			paymentID++
			pay := warehouse.Payment{
				PaymentID: paymentID,
				OrderID:   orderID,
				Method:    str(Choose(f, paymentMethods)),
				Discount:  decimal.NewNullDecimal(decimal.Zero),
				Cashier:   str(Truncate(f.Name(), 50)),
			}
			if statusID == 1 && p == 0 {
				pay.Amount = decimal.NewNullDecimal(decimal.Zero)
				pay.Status = str("Unpaid")
			} else {
				paid := ordered
				if f.Bool() {
					paid = ordered.AddDate(0, 0, f.Int(1, 7))
				}
				pay.PaymentDate = isoDate(paid)
				pay.Amount = decimal.NewNullDecimal(total.Div(decimal.NewFromInt(int64(payments))).Round(2))
				pay.Status = str("Paid")
				pay.ReferenceNumber = str(fmt.Sprintf("TRX-%06d", paymentID))
				o.PaymentStatus = str("Paid")
				if f.Int(1, 10) == 1 {
					pay.Discount = decimal.NewNullDecimal(f.Money(5000, 25000).Round(-3))
				}
			}
			s.Payments = append(s.Payments, pay)
		}

		s.Orders = append(s.Orders, o)
	}

	return s
}
