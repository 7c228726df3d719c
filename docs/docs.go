// Package docs registers the OpenAPI description served at /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/tournaments": {
            "get": {"tags": ["tournaments"], "summary": "Список турниров",
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["created", "active", "finished"]},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tournaments"], "summary": "Создать турнир",
                "parameters": [{"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTournamentInput"}}],
                "responses": {"201": {"description": "tournament и editor_token"}, "400": {"description": "Ошибка валидации"}}}
        },
        "/tournaments/{tournamentID}": {
            "get": {"tags": ["tournaments"], "summary": "Получить турнир",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Не найден"}}},
            "delete": {"tags": ["tournaments"], "summary": "Удалить турнир", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"204": {"description": "Удалён"}, "403": {"description": "Токен другого турнира"}}}
        },
        "/tournaments/{tournamentID}/auth": {
            "post": {"tags": ["auth"], "summary": "Войти как редактор",
                "parameters": [{"$ref": "#/parameters/tournamentID"},
                    {"name": "input", "in": "body", "required": true, "schema": {"type": "object", "properties": {"password": {"type": "string"}}}}],
                "responses": {"200": {"description": "token, expires_at"}, "401": {"description": "Неверный пароль"}, "429": {"description": "Слишком много попыток"}}}
        },
        "/tournaments/{tournamentID}/players": {
            "get": {"tags": ["players"], "summary": "Список игроков",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["players"], "summary": "Добавить игрока", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"},
                    {"name": "input", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AddPlayerInput"}}],
                "responses": {"201": {"description": "Создан"}, "409": {"description": "Турнир уже начат"}}}
        },
        "/tournaments/{tournamentID}/players/{playerID}": {
            "delete": {"tags": ["players"], "summary": "Удалить игрока", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "playerID", "in": "path", "required": true, "type": "string", "format": "uuid"}],
                "responses": {"204": {"description": "Удалён"}, "409": {"description": "Турнир уже начат"}}}
        },
        "/tournaments/{tournamentID}/rounds": {
            "get": {"tags": ["rounds"], "summary": "Туры с парами",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/start": {
            "post": {"tags": ["rounds"], "summary": "Начать турнир", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"201": {"description": "Первый тур"}, "409": {"description": "Недопустимый переход"}, "422": {"description": "Нечётный или слишком малый состав"}}}
        },
        "/tournaments/{tournamentID}/pairings/{pairingID}/result": {
            "put": {"tags": ["rounds"], "summary": "Записать результат", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "pairingID", "in": "path", "required": true, "type": "string", "format": "uuid"},
                    {"name": "input", "in": "body", "required": true, "schema": {"type": "object", "properties": {"result": {"type": "string", "enum": ["1-0", "0-1", "0.5-0.5", "0-0"], "x-nullable": true}}}}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Партия не из текущего открытого тура"}}}
        },
        "/tournaments/{tournamentID}/rounds/current/finish": {
            "post": {"tags": ["rounds"], "summary": "Завершить текущий тур", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Не все результаты внесены"}}}
        },
        "/tournaments/{tournamentID}/rounds/next": {
            "post": {"tags": ["rounds"], "summary": "Следующий тур", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"201": {"description": "Новый тур"}, "409": {"description": "Тур не завершён или туры закончились"}, "422": {"description": "Жеребьёвка невозможна"}}}
        },
        "/tournaments/{tournamentID}/finish": {
            "post": {"tags": ["rounds"], "summary": "Завершить турнир", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Турнир не активен"}}}
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {"tags": ["standings"], "summary": "Турнирная таблица",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/progress": {
            "get": {"tags": ["standings"], "summary": "Очки по турам",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "parameters": {
        "tournamentID": {"name": "tournamentID", "in": "path", "required": true, "type": "string", "format": "uuid"}
    },
    "definitions": {
        "CreateTournamentInput": {"type": "object", "required": ["name", "password"],
            "properties": {"name": {"type": "string"}, "password": {"type": "string", "minLength": 8}}},
        "AddPlayerInput": {"type": "object", "required": ["name"],
            "properties": {"name": {"type": "string"}, "rating": {"type": "integer", "minimum": 0}}}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Swiss Tournament API",
	Description:      "Швейцарская система: игроки, туры, результаты, турнирная таблица.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
