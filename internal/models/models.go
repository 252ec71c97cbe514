package models

// All returns every model for migrations.
func All() []interface{} {
	return []interface{}{
		&User{}, &FilterPreference{}, &Tag{}, &Listing{}, &ListingImage{},
		&Like{}, &Dislike{}, &CartItem{}, &SavedItem{},
		&Order{}, &SubOrder{}, &OrderLine{}, &Notification{},
	}
}
