package models

type Tag struct {
	ID     int64
	UserID int64
	Name   string
	Icon   string
}

type Currency struct {
	Code   string
	Name   string
	UserID int64
}
