package db

import (
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/lsmythe/gatekeeper/guildmodels"
)

//DBConnection contains a handle to the database
type DBConnection struct {
	orm *gorm.DB
}

//Init opens (creating if necessary) the sqlite database at the given path
//and migrates the schema. Foreign keys are enforced so cascade deletes flow
//down the guild ownership tree.
func Init(path string) (*DBConnection, error) {
	dsn := fmt.Sprintf("%v?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	orm, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		logrus.Errorf("Failed to open database at %v because %v.", path, err)
		return nil, fmt.Errorf("failed to open database at %v because %v", path, err)
	}

	//sqlite allows one writer at a time; a single pooled connection keeps
	//concurrent transactions queueing instead of failing with SQLITE_BUSY.
	sqlDB, err := orm.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	res := DBConnection{
		orm: orm,
	}
	if err := res.Migrate(); err != nil {
		return nil, err
	}
	return &res, nil
}

//Migrate ensures all tables needed exist.
func (db *DBConnection) Migrate() error {
	err := db.orm.AutoMigrate(
		&guildmodels.Guild{},
		&guildmodels.Configuration{},
		&guildmodels.ChannelRegistry{},
		&guildmodels.RoleRegistry{},
		&guildmodels.Member{},
		&guildmodels.Question{},
		&guildmodels.QuestionOption{},
		&guildmodels.Submission{},
		&guildmodels.Answer{},
		&guildmodels.ModeratorAction{},
		&guildmodels.Game{},
		&guildmodels.Character{},
		&guildmodels.Announcement{},
	)
	if err != nil {
		logrus.Errorf("Failed to migrate database schema due to error %v", err)
		return fmt.Errorf("failed to migrate database schema: %v", err)
	}
	return nil
}

//Transaction runs fn against a transaction-scoped connection. The
//transaction commits if fn returns nil and rolls back otherwise. Engines use
//this to make multi-row transitions a single atomic unit.
func (db *DBConnection) Transaction(fn func(tx *DBConnection) error) error {
	return db.orm.Transaction(func(tx *gorm.DB) error {
		return fn(&DBConnection{orm: tx})
	})
}

//Close cleanly terminates the database connection
func (db *DBConnection) Close() {
	logrus.Info("Terminating DB connection...")
	sqlDB, err := db.orm.DB()
	if err != nil {
		logrus.Warnf("Failed to fetch underlying sql connection on close due to error %v", err)
		return
	}
	_ = sqlDB.Close()
}
