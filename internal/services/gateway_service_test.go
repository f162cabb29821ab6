package services

import (
	"testing"

	"github.com/shopspring/decimal"

	"dokan_app_echo/internal/models"
)

func gw(id uint, name models.GatewayName) models.PaymentGateway {
	g := models.PaymentGateway{Name: name, IsActive: true}
	g.ID = id
	return g
}

func gatewayIDs(gateways []models.PaymentGateway) []uint {
	ids := make([]uint, 0, len(gateways))
	for _, g := range gateways {
		ids = append(ids, g.ID)
	}
	return ids
}

func TestIntersectGateways(t *testing.T) {
	bkash := gw(1, models.GatewayBkash)
	nagad := gw(2, models.GatewayNagad)
	cod := gw(3, models.GatewayCOD)
	country := []models.PaymentGateway{bkash, nagad, cod}

	tests := []struct {
		name       string
		allowLists [][]models.PaymentGateway
		want       []uint
	}{
		{
			name:       "no products keeps all",
			allowLists: nil,
			want:       []uint{1, 2, 3},
		},
		{
			name:       "empty allow-list does not narrow",
			allowLists: [][]models.PaymentGateway{{}},
			want:       []uint{1, 2, 3},
		},
		{
			name:       "single list narrows",
			allowLists: [][]models.PaymentGateway{{bkash, cod}},
			want:       []uint{1, 3},
		},
		{
			name: "intersection across products",
			allowLists: [][]models.PaymentGateway{
				{bkash, nagad},
				{nagad, cod},
			},
			want: []uint{2},
		},
		{
			name: "disjoint lists yield nothing",
			allowLists: [][]models.PaymentGateway{
				{bkash},
				{cod},
			},
			want: []uint{},
		},
		{
			name: "empty list mixed with a narrowing one",
			allowLists: [][]models.PaymentGateway{
				{},
				{nagad},
			},
			want: []uint{2},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := gatewayIDs(intersectGateways(country, tc.allowLists))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestFilterForAmount(t *testing.T) {
	bkash := gw(1, models.GatewayBkash)
	cod := gw(2, models.GatewayCOD)
	all := []models.PaymentGateway{bkash, cod}

	tests := []struct {
		name  string
		total string
		want  []uint
	}{
		{name: "total above advance keeps cod", total: "101", want: []uint{1, 2}},
		{name: "total equal to advance drops cod", total: "100", want: []uint{1}},
		{name: "total below advance drops cod", total: "99.99", want: []uint{1}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := gatewayIDs(FilterForAmount(all, decimal.RequireFromString(tc.total)))
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestUniqueProductIDs(t *testing.T) {
	tests := []struct {
		name string
		in   []uint
		want []uint
	}{
		{name: "already unique", in: []uint{3, 1, 2}, want: []uint{1, 2, 3}},
		{name: "repeated id collapses", in: []uint{7, 7}, want: []uint{7}},
		{name: "quantity via repetition", in: []uint{2, 1, 2, 2, 1}, want: []uint{1, 2}},
		{name: "empty cart", in: nil, want: []uint{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := uniqueProductIDs(tc.in)
			if len(got) != len(tc.want) {
				t.Fatalf("got %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("got %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestGatewayCacheKeyIsOrderInsensitive(t *testing.T) {
	a := gatewayCacheKey(1, []uint{3, 1, 2})
	b := gatewayCacheKey(1, []uint{2, 3, 1})
	if a != b {
		t.Errorf("cache key depends on product order: %q vs %q", a, b)
	}
	if a == gatewayCacheKey(2, []uint{3, 1, 2}) {
		t.Error("cache key ignores the country")
	}
	// A cart with quantity two of a product keys the same as quantity one
	if a != gatewayCacheKey(1, []uint{3, 1, 2, 2, 3}) {
		t.Error("cache key depends on repeated product ids")
	}
}
