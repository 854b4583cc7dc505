package repository

import (
	"context"
	"errors"

	"k2age/model"

	"gorm.io/gorm"
)

// RunRepository 估计记录数据访问接口
type RunRepository interface {
	Create(ctx context.Context, run *model.BinaryRun) error
	GetByID(ctx context.Context, id string) (*model.BinaryRun, error)
	List(ctx context.Context, limit, offset int) ([]*model.BinaryRun, error)
	Delete(ctx context.Context, id string) error
}

// gormRunRepository GORM 实现
type gormRunRepository struct {
	db *gorm.DB
}

// NewGormRunRepository 创建 GORM 估计记录仓库
func NewGormRunRepository(db *gorm.DB) RunRepository {
	return &gormRunRepository{db: db}
}

// Create 保存记录及其轨迹点
func (r *gormRunRepository) Create(ctx context.Context, run *model.BinaryRun) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(run).Error
	})
}

// GetByID 根据ID获取记录，包含按序排列的轨迹点；不存在时返回 nil, nil
func (r *gormRunRepository) GetByID(ctx context.Context, id string) (*model.BinaryRun, error) {
	var run model.BinaryRun
	err := r.db.WithContext(ctx).
		Preload("Points", func(db *gorm.DB) *gorm.DB { return db.Order("idx ASC") }).
		Where("id = ?", id).
		First(&run).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &run, nil
}

// List 按创建时间倒序列出记录，不含轨迹点
func (r *gormRunRepository) List(ctx context.Context, limit, offset int) ([]*model.BinaryRun, error) {
	if limit <= 0 {
		limit = 20
	}
	var runs []*model.BinaryRun
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&runs).Error
	return runs, err
}

// Delete 删除记录及其轨迹点
func (r *gormRunRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("run_id = ?", id).Delete(&model.TrackPoint{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.BinaryRun{}).Error
	})
}
