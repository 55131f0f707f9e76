package models

import "time"

type Review struct {
	ID            string    `json:"id"`
	ProductID     string    `json:"product_id"`
	CustomerName  string    `json:"customer_name"`
	CustomerEmail string    `json:"customer_email,omitempty"`
	Rating        int       `json:"rating"` // 1-5
	Comment       string    `json:"comment,omitempty"`
	IsApproved    bool      `json:"is_approved"`
	CreatedAt     time.Time `json:"created_at"`
}

type ProductRating struct {
	ProductID     string  `json:"product_id"`
	AverageRating float64 `json:"average_rating"`
	TotalReviews  int     `json:"total_reviews"`
}

// RatingOf averages the given reviews.
func RatingOf(productID string, reviews []Review) ProductRating {
	r := ProductRating{ProductID: productID, TotalReviews: len(reviews)}
	if len(reviews) == 0 {
		return r
	}
	sum := 0
	for _, rv := range reviews {
		sum += rv.Rating
	}
	r.AverageRating = float64(sum) / float64(len(reviews))
	return r
}
