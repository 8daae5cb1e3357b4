package handlers

// @title Contacts Function API
// @version 1.0
// @description CRUD over a table of contacts, served as a serverless HTTP function

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:7071
// @BasePath /api

// @tag.name contacts
// @tag.description Contact management operations
