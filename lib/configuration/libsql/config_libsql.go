package configlibsql

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

type Struct struct {
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
}

func (config Struct) OpenDB(schema string) (*sql.DB, error) {
	var db *sql.DB
	var err error

	if config.Url == "" {
		if config.File == "" {
			return nil, fmt.Errorf("a database file or url must be specified")
		}
		db, err = sql.Open("libsql", fmt.Sprintf("file:%s", config.File))
		if err != nil {
			return nil, err
		}
	} else {
		values := url.Values{}
		if config.AuthToken != "" {
			values.Add("authToken", config.AuthToken)
		}
		db, err = sql.Open("libsql", config.Url+"?"+values.Encode())
		if err != nil {
			return nil, err
		}
	}

	if schema != "" {
		_, err = db.Exec(schema)
		if err != nil && !strings.Contains(err.Error(), "already exists") {
			db.Close()
			return nil, err
		}
	}
	return db, nil
}
