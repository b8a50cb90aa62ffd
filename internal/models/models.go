package models

// Season and category values accepted by the catalog.
var (
	Seasons    = []string{"Spring", "Summer", "Fall", "Winter"}
	Categories = []string{"Outer", "Top", "Bottom", "Dress", "Shoes", "Accessories"}
)

const DefaultImageURL = "https://via.placeholder.com/400"

func ValidSeason(s string) bool {
	for _, v := range Seasons {
		if v == s {
			return true
		}
	}
	return false
}

func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

type User struct {
	ID           uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string `gorm:"unique;not null"          json:"username"`
	PasswordHash string `gorm:"not null"                 json:"-"`
	Role         string `gorm:"not null"                 json:"role"`
}

type RefreshToken struct {
	ID        uint   `gorm:"primaryKey"      json:"id"`
	Token     string `gorm:"unique;not null" json:"token"`
	UserID    uint   `gorm:"index;not null"  json:"user_id"`
	ExpiresAt int64  `gorm:"not null"        json:"expires_at"`
	Revoked   bool   `gorm:"default:false"   json:"revoked"`
}

type Item struct {
	ID       uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string  `gorm:"not null"                 json:"name"`
	Price    float64 `gorm:"not null"                 json:"price"`
	Season   string  `gorm:"not null"                 json:"season"`
	Category string  `gorm:"not null"                 json:"category"`
	UserID   uint    `gorm:"index;not null"           json:"userId"`
	URL      string  `json:"url"`
	ImageURL string  `json:"imageUrl"`
}

// CartItem is a denormalized snapshot: name and price are copied from the
// catalog at add-time and never refreshed afterwards. Deleting the catalog
// item leaves the line in place.
type CartItem struct {
	ID        uint    `gorm:"primaryKey"                  json:"id"`
	UserID    uint    `gorm:"index;not null"              json:"user_id"`
	ProductID uint    `gorm:"not null"                    json:"productId"`
	Name      string  `gorm:"not null"                    json:"name"`
	Price     float64 `gorm:"not null"                    json:"price"`
	Quantity  uint    `gorm:"default:1;check:quantity>0"  json:"quantity"`
}

type Order struct {
	ID              uint    `gorm:"primaryKey"     json:"id"`
	UserID          uint    `gorm:"index;not null" json:"user_id"`
	Date            string  `gorm:"not null"       json:"date"`
	Total           float64 `gorm:"not null"       json:"total"`
	CustomerName    string  `gorm:"not null"       json:"-"`
	CustomerPhone   string  `gorm:"not null"       json:"-"`
	CustomerAddress string  `gorm:"not null"       json:"-"`
	PaymentBank     string  `gorm:"not null"       json:"-"`
}

type OrderItem struct {
	ID       uint    `gorm:"primaryKey"     json:"id"`
	OrderID  uint    `gorm:"index;not null" json:"order_id"`
	Name     string  `gorm:"not null"       json:"name"`
	Price    float64 `gorm:"not null"       json:"price"`
	Quantity uint    `gorm:"default:1"      json:"quantity"`
}
