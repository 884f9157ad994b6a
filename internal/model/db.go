package model

import "gorm.io/gorm"

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&Headline{}); err != nil {
		return err
	}

	if err := db.AutoMigrate(&HeadlineRef{}); err != nil {
		return err
	}

	return nil
}
