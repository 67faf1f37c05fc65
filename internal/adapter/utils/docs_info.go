// @title           ScholarRAG API
// @version         1.0
// @description     Retrieval-augmented question answering over an academic paper collection, with hybrid semantic and keyword retrieval.
// @termsOfService  http://swagger.io/terms/

// @contact.name    API Support
// @contact.url
// @contact.email   akepally.dev@gmail.com

// @license.name    Apache 2.0
// @license.url     http://www.apache.org/licenses/LICENSE-2.0.html

// @host      localhost:3000
// @BasePath  /
// @schemes   http https

// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Bearer token, "Bearer <AUTH_TOKEN>"
package utils

//run redis
//docker run -p 6379:6379 -d redis

//run qdrant (optional remote vector backend)
//docker run -p 6333:6333 -p 6334:6334 -v vectorDBData:/qdrant/storage qdrant/qdrant

//swagger init
//swag init -g internal/adapter/utils/docs_info.go --parseDependency --parseInternal --dir ./ --output ./cmd/api/docs
