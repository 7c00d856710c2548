package domain

import "time"

// ItemStatus enumerates lifecycle states for listed garments.
type ItemStatus string

const (
	ItemStatusPending       ItemStatus = "pending"
	ItemStatusAvailable     ItemStatus = "available"
	ItemStatusRejected      ItemStatus = "rejected"
	ItemStatusInSwapProcess ItemStatus = "in-swap-process"
	ItemStatusRedeemed      ItemStatus = "redeemed"
)

// ItemCondition describes wear.
type ItemCondition string

const (
	ConditionNew       ItemCondition = "new"
	ConditionLikeNew   ItemCondition = "like-new"
	ConditionExcellent ItemCondition = "excellent"
	ConditionGood      ItemCondition = "good"
	ConditionFair      ItemCondition = "fair"
	ConditionPoor      ItemCondition = "poor"
)

// ItemCategory is the audience a garment is cut for.
type ItemCategory string

const (
	CategoryMen    ItemCategory = "men"
	CategoryWomen  ItemCategory = "women"
	CategoryUnisex ItemCategory = "unisex"
	CategoryKids   ItemCategory = "kids"
)

// ItemSize is an optional label size.
type ItemSize string

const (
	SizeXS      ItemSize = "XS"
	SizeS       ItemSize = "S"
	SizeM       ItemSize = "M"
	SizeL       ItemSize = "L"
	SizeXL      ItemSize = "XL"
	SizeXXL     ItemSize = "XXL"
	SizeXXXL    ItemSize = "XXXL"
	SizeOneSize ItemSize = "one-size"
)

const (
	MaxItemNameLength        = 100
	MaxItemDescriptionLength = 1000
)

// Item is a single listed garment with one owner.
type Item struct {
	ID          string
	OwnerID     string
	Name        string
	Description string
	Cost        int
	Images      []string
	Condition   ItemCondition
	Tags        []string
	Size        *ItemSize
	Category    ItemCategory
	Status      ItemStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GarmentTags is the closed tag vocabulary.
var GarmentTags = []string{
	"shirt", "t-shirt", "blouse", "tank-top", "sweater", "hoodie", "cardigan",
	"jacket", "coat", "blazer", "vest", "pants", "jeans", "trousers", "shorts",
	"leggings", "skirt", "dress", "jumpsuit", "romper", "underwear", "bra",
	"socks", "tights", "shoes", "sneakers", "boots", "sandals", "heels", "flats",
	"accessories", "hat", "cap", "scarf", "gloves", "belt", "bag", "purse",
	"backpack", "jewelry", "watch", "sunglasses",
}

var garmentTagSet = func() map[string]struct{} {
	set := make(map[string]struct{}, len(GarmentTags))
	for _, tag := range GarmentTags {
		set[tag] = struct{}{}
	}
	return set
}()

// IsGarmentTag reports whether tag belongs to the vocabulary.
func IsGarmentTag(tag string) bool {
	_, ok := garmentTagSet[tag]
	return ok
}

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case ItemStatusPending, ItemStatusAvailable, ItemStatusRejected, ItemStatusInSwapProcess, ItemStatusRedeemed:
		return true
	}
	return false
}

func (c ItemCondition) Valid() bool {
	switch c {
	case ConditionNew, ConditionLikeNew, ConditionExcellent, ConditionGood, ConditionFair, ConditionPoor:
		return true
	}
	return false
}

func (c ItemCategory) Valid() bool {
	switch c {
	case CategoryMen, CategoryWomen, CategoryUnisex, CategoryKids:
		return true
	}
	return false
}

func (s ItemSize) Valid() bool {
	switch s {
	case SizeXS, SizeS, SizeM, SizeL, SizeXL, SizeXXL, SizeXXXL, SizeOneSize:
		return true
	}
	return false
}
