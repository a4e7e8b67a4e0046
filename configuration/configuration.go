// SPDX-License-Identifier: ISC
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - daemon configuration file handling
//
// the configuration file is a Lua program whose final expression is a
// table; relative paths in the table are resolved against the data
// directory
package configuration

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bitmark-inc/logger"

	"github.com/dashpay/platformd/chain"
	"github.com/dashpay/platformd/corechain"
	"github.com/dashpay/platformd/fault"
	"github.com/dashpay/platformd/query"
)

// basic defaults, relative items are resolved against DataDirectory
const (
	defaultDataDirectory = "" // this will error; use "." for the config file directory

	defaultLevelDBDirectory = "data"
	defaultMainnetDatabase  = chain.Mainnet + ".leveldb"
	defaultTestnetDatabase  = chain.Testnet + ".leveldb"
	defaultLocalDatabase    = chain.Local + ".leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "platformd.log"
	defaultLogCount     = 10
	defaultLogSize      = 1024 * 1024

	defaultQueryListen = "127.0.0.1:9987"
)

var defaultLogLevels = map[string]string{
	logger.DefaultTag: "critical",
}

// DatabaseType - location of the state store
type DatabaseType struct {
	Directory string `gluamapper:"directory"`
	Name      string `gluamapper:"name"`
}

// Configuration - the decoded configuration file
type Configuration struct {
	DataDirectory string       `gluamapper:"data_directory"`
	PidFile       string       `gluamapper:"pidfile"`
	Chain         string       `gluamapper:"chain"`
	Database      DatabaseType `gluamapper:"database"`

	CoreChain corechain.Configuration `gluamapper:"core_chain"`
	Query     query.Configuration     `gluamapper:"query"`
	Logging   logger.Configuration    `gluamapper:"logging"`
}

// DatabaseFile - full path of the leveldb store
func (c *Configuration) DatabaseFile() string {
	return filepath.Join(c.Database.Directory, c.Database.Name)
}

// GetConfiguration - read, decode and verify the configuration
func GetConfiguration(configurationFileName string) (*Configuration, error) {

	configurationFileName, err := filepath.Abs(filepath.Clean(configurationFileName))
	if nil != err {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(configurationFileName)

	options := &Configuration{

		DataDirectory: defaultDataDirectory,
		PidFile:       "", // no PidFile by default
		Chain:         chain.Mainnet,

		Database: DatabaseType{
			Directory: defaultLevelDBDirectory,
			Name:      defaultMainnetDatabase,
		},

		Query: query.Configuration{
			Listen: defaultQueryListen,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels:    defaultLogLevels,
		},
	}

	if err := ParseConfigurationFile(configurationFileName, options); nil != err {
		return nil, err
	}

	options.Chain = strings.ToLower(options.Chain)
	if !chain.Valid(options.Chain) {
		return nil, fault.InvalidChain
	}

	// if database was not changed from default switch to the
	// default matching the chain
	if defaultMainnetDatabase == options.Database.Name {
		switch options.Chain {
		case chain.Mainnet:
			// already correct default
		case chain.Testnet:
			options.Database.Name = defaultTestnetDatabase
		case chain.Local:
			options.Database.Name = defaultLocalDatabase
		}
	}

	// ensure absolute data directory
	if "" == options.DataDirectory || "~" == options.DataDirectory {
		return nil, fault.InvalidConfiguration
	} else if "." == options.DataDirectory {
		options.DataDirectory = dataDirectory // same directory as the configuration file
	} else {
		options.DataDirectory = filepath.Clean(options.DataDirectory)
	}

	// this directory must exist, created prior to running
	fileInfo, err := os.Stat(options.DataDirectory)
	if nil != err {
		return nil, err
	}
	if !fileInfo.IsDir() {
		return nil, fault.InvalidConfiguration
	}

	// force all relevant items to be absolute paths
	// if not, resolve them against the data directory
	mustBeAbsolute := []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, f := range mustBeAbsolute {
		*f = ensureAbsolute(options.DataDirectory, *f)
	}

	// optional absolute paths i.e. blank or an absolute path
	optionalAbsolute := []*string{
		&options.PidFile,
	}
	for _, f := range optionalAbsolute {
		if "" != *f {
			*f = ensureAbsolute(options.DataDirectory, *f)
		}
	}

	// fail if any of these are not simple file names
	// i.e. must not contain a path separator
	mustNotBePaths := []*string{
		&options.Database.Name,
		&options.Logging.File,
	}
	for _, f := range mustNotBePaths {
		switch filepath.Dir(*f) {
		case "", ".":
		default:
			return nil, fault.InvalidConfiguration
		}
	}

	// create directories if they do not already exist
	for _, d := range []*string{
		&options.Database.Directory,
		&options.Logging.Directory,
	} {
		if err := os.MkdirAll(*d, 0700); nil != err {
			return nil, err
		}
	}

	return options, nil
}

// ensure the path is absolute
func ensureAbsolute(directory string, filePath string) string {
	if !filepath.IsAbs(filePath) {
		filePath = filepath.Join(directory, filePath)
	}
	return filepath.Clean(filePath)
}
