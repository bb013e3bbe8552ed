package models

// DatasetModel is a logical data partition users can be scoped to.
type DatasetModel struct {
	Base
	Name        string `json:"name" gorm:"uniqueIndex;not null"`
	Description string `json:"description"`
}

func (DatasetModel) TableName() string { return "datasets" }

// UserDataset assigns a dataset to a user. At most one row per user carries
// IsDefault; the dataset selector treats it as the implicit choice.
type UserDataset struct {
	ID        uint   `json:"id"         gorm:"primaryKey"`
	UserID    string `json:"user_id"    gorm:"index:idx_user_dataset,unique;not null"`
	DatasetID string `json:"dataset_id" gorm:"index:idx_user_dataset,unique;not null"`
	IsDefault bool   `json:"is_default"`
}

func (UserDataset) TableName() string { return "user_datasets" }
