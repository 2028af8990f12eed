package main

import "stockhive/internal/models"

type demoProduct struct {
	name, brand, description, category string
	price                              float64
	stock                              int
}

// demoCatalog spans the storefront's five departments.
var demoCatalog = []demoProduct{
	{"MacBook Air M2", "Apple", "13.6-inch Liquid Retina display, M2 chip, 8GB unified memory, 256GB SSD", "Electronics", 1199.99, 12},
	{"Sony WH-1000XM4", "Sony", "Wireless noise-canceling headphones with 30-hour battery life and touch controls", "Electronics", 349.99, 25},
	{"Samsung Galaxy S23", "Samsung", "6.1-inch Dynamic AMOLED display, Snapdragon 8 Gen 2, 50MP camera, 128GB storage", "Electronics", 799.99, 8},
	{"Converse Chuck Taylor All Star", "Converse", "Classic canvas high-top sneakers with rubber toe cap", "Fashion", 59.99, 40},
	{"Levi's 501 Original Jeans", "Levi's", "Straight fit jeans, 100% cotton denim, button fly", "Fashion", 89.99, 30},
	{"The Power of Habit", "Random House", "Why We Do What We Do in Life and Business by Charles Duhigg", "Books", 16.99, 60},
	{"Think and Grow Rich", "Penguin", "Napoleon Hill's classic on success principles and wealth building", "Books", 12.99, 0},
	{"Wilson Pro Staff Tennis Racket", "Wilson", "Professional racket, 97 sq inch head, 16x19 string pattern", "Sports & Outdoors", 249.99, 5},
	{"Yeti Rambler Tumbler", "Yeti", "20oz stainless steel tumbler, vacuum insulated", "Home & Garden", 34.99, 75},
	{"Instant Pot Duo 7-in-1", "Instant Pot", "Electric pressure cooker, 6-quart capacity, 7 cooking functions", "Home & Garden", 89.99, 15},
}

func (p demoProduct) request() models.CreateProductRequest {
	price, stock := p.price, p.stock
	return models.CreateProductRequest{
		Name:        p.name,
		Brand:       p.brand,
		Description: p.description,
		Price:       &price,
		Category:    p.category,
		Stock:       &stock,
	}
}
