package model

type User struct {
	ID    string `json:"id,omitempty" bson:"_id,omitempty"`
	Name  string `json:"name" bson:"name"`
	Email string `json:"email,omitempty" bson:"email,omitempty"`
}

type Room struct {
	ID            string  `json:"id,omitempty" bson:"_id,omitempty"`
	HotelName     string  `json:"hotel_name" bson:"hotel_name"`
	Number        string  `json:"number" bson:"number"`
	PricePerNight float64 `json:"price_per_night" bson:"price_per_night"`
}
