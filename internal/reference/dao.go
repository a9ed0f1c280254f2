package reference

import (
	"fmt"
	"github.com/packagewjx/flight-feature-prep/internal/lookup"
	"github.com/pkg/errors"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"log"
	"os"
)

const (
	DefaultMysqlUser     = "root"
	DefaultMysqlDatabase = "flights"
)

// AirportDelayDO 参考表在数据库中的一行
type AirportDelayDO struct {
	gorm.Model
	Kind  string  `gorm:"uniqueIndex:kind_code;type:VARCHAR(16)"`
	Code  string  `gorm:"uniqueIndex:kind_code;type:VARCHAR(16)"`
	Delay float64 `gorm:"not null"`
}

type DBConfig struct {
	// host:port。为空时读取环境变量MYSQL_SERVICE_HOST与MYSQL_SERVICE_PORT
	Host     string
	User     string
	Password string
	Database string
}

func (c *DBConfig) dsn() string {
	host := c.Host
	if host == "" {
		host = fmt.Sprintf("%s:%s", os.Getenv("MYSQL_SERVICE_HOST"), os.Getenv("MYSQL_SERVICE_PORT"))
	}
	user := c.User
	if user == "" {
		user = DefaultMysqlUser
	}
	database := c.Database
	if database == "" {
		database = DefaultMysqlDatabase
	}
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, c.Password, host, database)
}

// DBSource 从MySQL读取参考表，也用于导入
type DBSource struct {
	db *gorm.DB
}

var _ Source = &DBSource{}

func NewDBSource(config *DBConfig) (*DBSource, error) {
	db, err := gorm.Open(mysql.Open(config.dsn()), &gorm.Config{
		Logger: logger.New(log.New(os.Stdout, "", 0), logger.Config{
			LogLevel: logger.Silent,
		}),
	})
	if err != nil {
		return nil, errors.Wrap(err, "连接数据库错误")
	}

	err = db.AutoMigrate(&AirportDelayDO{})
	if err != nil {
		return nil, errors.Wrap(err, "创建表格时出现异常")
	}

	return &DBSource{db: db}, nil
}

func (d *DBSource) Load(kind Kind) (*lookup.Table, error) {
	records := make([]*AirportDelayDO, 0)
	err := d.db.Where("kind = ?", string(kind)).Find(&records).Error
	if err != nil {
		return nil, errors.Wrap(err, fmt.Sprintf("读取%s参考表出错", kind))
	}

	values := make(map[string]float64, len(records))
	for _, record := range records {
		values[record.Code] = record.Delay
	}
	return lookup.New(string(kind), values), nil
}

// Import 用table替换数据库中kind类的全部记录
func (d *DBSource) Import(kind Kind, table *lookup.Table) error {
	records := make([]*AirportDelayDO, 0, table.Len())
	for _, code := range table.Keys() {
		delay, _ := table.Get(code)
		records = append(records, &AirportDelayDO{
			Kind:  string(kind),
			Code:  code,
			Delay: delay,
		})
	}

	return d.db.Transaction(func(tx *gorm.DB) error {
		err := tx.Unscoped().Where("kind = ?", string(kind)).Delete(&AirportDelayDO{}).Error
		if err != nil {
			return errors.Wrap(err, "删除旧记录出错")
		}
		if len(records) == 0 {
			return nil
		}
		return errors.Wrap(tx.Create(&records).Error, "写入记录出错")
	})
}

func (d *DBSource) Close() error {
	s, err := d.db.DB()
	if err != nil {
		return err
	}
	return s.Close()
}
