package services

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"dokan_app_echo/internal/models"
)

const gatewayCacheTTL = 5 * time.Minute

// GatewayService resolves which payment gateways can be offered for a
// checkout: the active gateways of the country, narrowed by every product's
// allow-list.
type GatewayService struct {
	db                 *gorm.DB
	cache              *RedisCache
	defaultCountryCode string
}

func NewGatewayService(db *gorm.DB, cache *RedisCache, defaultCountryCode string) *GatewayService {
	return &GatewayService{db: db, cache: cache, defaultCountryCode: defaultCountryCode}
}

// ResolveGateways computes the gateways offered for the given country and
// cart. With no products, all active gateways of the country are returned;
// otherwise the intersection across all products' allow-lists (a product with
// an empty allow-list does not narrow the set). Lookup failures yield an
// empty list so the checkout renders "no payment methods" instead of crashing.
func (s *GatewayService) ResolveGateways(ctx context.Context, countryID uint, productIDs []uint) []models.PaymentGateway {
	countryID = s.effectiveCountry(countryID)
	if countryID == 0 {
		return nil
	}

	key := gatewayCacheKey(countryID, productIDs)

	fetch := func() ([]models.PaymentGateway, error) {
		return s.resolveUncached(countryID, productIDs)
	}

	if s.cache == nil {
		gateways, err := fetch()
		if err != nil {
			log.Printf("Failed to resolve gateways for country %d: %v", countryID, err)
			return nil
		}
		return gateways
	}

	gateways, err := GetOrSet(s.cache, ctx, key, gatewayCacheTTL, fetch)
	if err != nil {
		log.Printf("Failed to resolve gateways for country %d: %v", countryID, err)
		return nil
	}
	return gateways
}

func (s *GatewayService) resolveUncached(countryID uint, productIDs []uint) ([]models.PaymentGateway, error) {
	var countryGateways []models.PaymentGateway
	if err := s.db.Where("country_id = ? AND is_active = ?", countryID, true).Order("id").Find(&countryGateways).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch country gateways: %w", err)
	}

	// A cart expresses quantity by repeating the product id; the allow-list
	// lookup only cares about the distinct products.
	ids := uniqueProductIDs(productIDs)
	if len(ids) == 0 {
		return countryGateways, nil
	}

	var products []models.Product
	if err := s.db.Preload("Gateways").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch product allow-lists: %w", err)
	}
	if len(products) != len(ids) {
		return nil, fmt.Errorf("unknown product in cart")
	}

	allowLists := make([][]models.PaymentGateway, 0, len(products))
	for _, p := range products {
		allowLists = append(allowLists, p.Gateways)
	}

	return intersectGateways(countryGateways, allowLists), nil
}

// intersectGateways narrows the country's gateways by every product
// allow-list. An empty allow-list contributes "all gateways" and therefore
// does not narrow the result.
func intersectGateways(countryGateways []models.PaymentGateway, allowLists [][]models.PaymentGateway) []models.PaymentGateway {
	allowed := make([]models.PaymentGateway, 0, len(countryGateways))
	for _, gw := range countryGateways {
		ok := true
		for _, list := range allowLists {
			if len(list) == 0 {
				continue
			}
			found := false
			for _, a := range list {
				if a.ID == gw.ID {
					found = true
					break
				}
			}
			if !found {
				ok = false
				break
			}
		}
		if ok {
			allowed = append(allowed, gw)
		}
	}
	return allowed
}

// FilterForAmount removes gateways that cannot serve the given order total.
// COD requires a total strictly above the fixed advance, otherwise the
// remaining balance on delivery would be zero or negative.
func FilterForAmount(gateways []models.PaymentGateway, total decimal.Decimal) []models.PaymentGateway {
	out := make([]models.PaymentGateway, 0, len(gateways))
	for _, gw := range gateways {
		if gw.IsCOD() && total.LessThanOrEqual(CODAdvanceAmount) {
			continue
		}
		out = append(out, gw)
	}
	return out
}

// effectiveCountry falls back to the store's default country so the flow
// never shows zero gateways purely due to missing geolocation.
func (s *GatewayService) effectiveCountry(countryID uint) uint {
	if countryID != 0 {
		return countryID
	}

	var country models.Country
	err := s.db.Where("code = ? AND is_active = ?", s.defaultCountryCode, true).First(&country).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			log.Printf("Failed to resolve default country: %v", err)
		}
		return 0
	}
	return country.ID
}

func gatewayCacheKey(countryID uint, productIDs []uint) string {
	ids := uniqueProductIDs(productIDs)

	parts := make([]string, 0, len(ids))
	for _, id := range ids {
		parts = append(parts, fmt.Sprint(id))
	}
	return fmt.Sprintf("gateways:%d:%s", countryID, strings.Join(parts, ","))
}

// uniqueProductIDs returns the distinct product ids, sorted
func uniqueProductIDs(productIDs []uint) []uint {
	seen := make(map[uint]struct{}, len(productIDs))
	ids := make([]uint, 0, len(productIDs))
	for _, id := range productIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}
