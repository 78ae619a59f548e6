package database

import (
	"ipamd/internal/domain"
)

func CreateUser(user *domain.User) error {
	return DB.Create(user).Error
}

func GetUserByEmail(email string) (*domain.User, error) {
	var user domain.User
	if err := DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserFromId(id uint) domain.User {
	var user domain.User
	DB.Where("id = ?", id).First(&user)
	return user
}

func CountUsers() int64 {
	var count int64
	DB.Model(&domain.User{}).Count(&count)
	return count
}
