package api

// @title Notes API
// @version v0.1.0
// @description Notes and tags with a many-to-many association, stored in SQLite.

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @host localhost:8778
// @BasePath /
// @schemes http
