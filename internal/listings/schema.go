// Package listings loads and cleans the NYC Airbnb listings dataset.
package listings

import (
	"errors"
	"regexp"
	"strings"
)

// Canonical column names after normalization.
const (
	ColBorough       = "neighbourhood_group"
	ColNeighbourhood = "neighbourhood"
	ColRoomType      = "room_type"
	ColPrice         = "price"
	ColMinNights     = "minimum_nights"
	ColReviews       = "number_of_reviews"
	ColLastReview    = "last_review"
	ColAvailability  = "availability_365"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
)

// Room type labels used by the dataset.
const (
	EntireHome  = "Entire home/apt"
	PrivateRoom = "Private room"
	SharedRoom  = "Shared room"
)

// RoomTypes lists the known room type labels in report order.
var RoomTypes = []string{EntireHome, PrivateRoom, SharedRoom}

// RequiredColumns must be present in every input file.
var RequiredColumns = []string{
	ColBorough, ColNeighbourhood, ColRoomType, ColPrice, ColMinNights,
	ColReviews, ColLastReview, ColAvailability, ColLatitude, ColLongitude,
}

// floatColumns and intColumns are coerced during cleaning.
var (
	floatColumns = []string{ColPrice, ColLatitude, ColLongitude}
	intColumns   = []string{ColMinNights, ColReviews, ColAvailability}
)

// missingTokens are treated as missing values on load.
var missingTokens = []string{"", "NA", "NaN", "nan", "null", "NULL", "<nil>"}

var columnAliases = map[string]string{
	"borough": ColBorough,
}

var (
	ErrSchema       = errors.New("schema error")
	ErrEmptyDataset = errors.New("empty dataset")
	ErrNonNumeric   = errors.New("non-numeric value")
)

var nameSeparators = regexp.MustCompile(`[\s\-.]+`)

// NormalizeName maps a header cell to its canonical column name.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "\ufeff")
	s = nameSeparators.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if alias, ok := columnAliases[s]; ok {
		return alias
	}
	return s
}

// Borough labels compared in the price tests.
const (
	Manhattan = "Manhattan"
	Brooklyn  = "Brooklyn"
)
