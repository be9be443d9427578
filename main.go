package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"time"

	"refgraph/config"
	"refgraph/graph"
	"refgraph/models"
	"refgraph/providers"
	"refgraph/providers/crossref"
	"refgraph/providers/datacite"
	"refgraph/services"
	"refgraph/storage"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	importedEntitiesCounter prometheus.Counter
	referenceEdgesCounter   prometheus.Counter
	registryErrorsCounter   prometheus.Counter
)

func init() {
	importedEntitiesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "imported_entities_total",
			Help: "Total number of entities created via DOI import.",
		},
	)
	referenceEdgesCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reference_edges_created_total",
			Help: "Total number of reference edges created.",
		},
	)
	registryErrorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "registry_errors_total",
			Help: "Total number of failed registry lookups.",
		},
	)
	prometheus.MustRegister(importedEntitiesCounter, referenceEdgesCounter, registryErrorsCounter)
}

func apiKeyAuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.APISecretKey == "" {
			c.Next()
			return
		}
		apiKey := c.GetHeader("X-API-KEY")
		if apiKey != cfg.APISecretKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid API Key"})
			return
		}
		c.Next()
	}
}

func main() {
	logging, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logging.Sync()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Config load error", zap.Error(err))
	}

	// Setup Database Connection
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		logging.Fatal("Failed to connect to database", zap.Error(err))
	}
	logging.Info("Successfully connected to database.")

	// Auto-Migration
	if gin.Mode() == gin.DebugMode {
		logging.Info("Debug mode detected. Dropping tables for fresh start.")
		db.Migrator().DropTable(
			&models.Reference{},
			&models.ArticleAuthorship{}, &models.BookAuthorship{},
			&models.TranslationAuthorship{}, &models.ThesisAuthorship{},
			&models.Article{}, &models.Book{}, &models.TranslatedBook{},
			&models.Thesis{}, &models.ResearchProject{}, &models.ResearchProposal{},
			&models.Author{},
		)
	}
	logging.Info("Running database auto-migration...")
	db.AutoMigrate(
		&models.Author{},
		&models.Article{}, &models.ArticleAuthorship{},
		&models.Book{}, &models.BookAuthorship{},
		&models.TranslatedBook{}, &models.TranslationAuthorship{},
		&models.Thesis{}, &models.ThesisAuthorship{},
		&models.ResearchProject{}, &models.ResearchProposal{},
		&models.Reference{},
	)

	// Setup Registry Provider
	var registry providers.Registry
	switch cfg.RegistryProvider {
	case "crossref":
		registry = crossref.NewFetcher(cfg, logging)
	case "datacite":
		registry = datacite.NewFetcher(cfg, logging)
	default:
		logging.Fatal("Unknown registry provider in config", zap.String("provider", cfg.RegistryProvider))
	}
	logging.Info("Active registry provider loaded", zap.String("provider", registry.Name()))

	// Setup Services
	snapshotStore, err := storage.NewStore(cfg)
	if err != nil {
		logging.Fatal("S3 client creation failed", zap.Error(err))
	}
	referenceGraph := graph.NewGraph(db, logging)
	importService := services.NewImportService(cfg, db, referenceGraph, registry, logging)
	biblioService := services.NewBibliographyService(db, referenceGraph, logging)
	exportService := services.NewExportService(referenceGraph, biblioService, snapshotStore, logging)
	refreshService := services.NewRefreshService(cfg, db, registry, logging)

	// Setup Router
	router := gin.Default()
	router.Use(gin.Recovery())
	router.Use(apiKeyAuthMiddleware(cfg))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Setup Routes
	setupImportRoutes(router, importService, logging)
	setupReferenceRoutes(router, referenceGraph, logging)
	setupEntityRoutes(router, referenceGraph, logging)
	setupArticleRoutes(router, db, logging)
	setupAuthorRoutes(router, db, logging)
	setupExportRoutes(router, exportService, logging)

	// Setup Cron
	cronScheduler := cron.New()
	cronScheduler.AddFunc(cfg.RefreshCronSchedule, func() {
		logging.Info("Running scheduled metadata refresh...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		count, err := refreshService.RunOnce(ctx)
		if err != nil {
			logging.Error("Metadata refresh failed", zap.Error(err))
		} else {
			logging.Info("Metadata refresh completed", zap.Int("updated_articles", count))
		}
	})
	cronScheduler.Start()

	logging.Info("Starting server", zap.String("port", cfg.HTTPPort))
	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	if err := srv.ListenAndServe(); err != nil {
		logging.Fatal("Failed to run server", zap.Error(err))
	}
}

// setupImportRoutes konfiguriert den DOI-Import-Endpunkt.
func setupImportRoutes(router *gin.Engine, importService *services.ImportService, log *zap.Logger) {
	rg := router.Group("/import")

	// POST - DOI importieren und mit der zitierenden Entität verknüpfen
	rg.POST("/", func(c *gin.Context) {
		var req struct {
			CitingType string `json:"citing_type" binding:"required"`
			CitingID   uint   `json:"citing_id" binding:"required"`
			DOI        string `json:"doi" binding:"required"`
			Status     string `json:"status"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body. 'citing_type', 'citing_id' and 'doi' are required."})
			return
		}

		result := importService.ImportAndLink(c.Request.Context(), req.CitingType, req.CitingID, req.DOI, req.Status)
		if !result.Success {
			switch result.ErrorCode {
			case services.CodeInvalidDOI, services.CodeUnknownType:
				c.JSON(http.StatusBadRequest, result)
			case services.CodeNotFound:
				c.JSON(http.StatusNotFound, result)
			case services.CodeRegistryError:
				registryErrorsCounter.Inc()
				c.JSON(http.StatusBadGateway, result)
			default:
				c.JSON(http.StatusInternalServerError, result)
			}
			return
		}

		if result.CreatedEntity {
			importedEntitiesCounter.Inc()
		}
		if result.ReferenceID != 0 && !result.Duplicate {
			referenceEdgesCounter.Inc()
		}
		c.JSON(http.StatusOK, result)
	})
}

// setupReferenceRoutes konfiguriert die Endpunkte des Referenz-Graphen.
func setupReferenceRoutes(router *gin.Engine, g *graph.Graph, log *zap.Logger) {
	rg := router.Group("/references")

	// POST - Kante manuell anlegen
	rg.POST("/", func(c *gin.Context) {
		var req struct {
			CitingType string `json:"citing_type" binding:"required"`
			CitingID   uint   `json:"citing_id" binding:"required"`
			CitedType  string `json:"cited_type" binding:"required"`
			CitedID    uint   `json:"cited_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		edge, err := g.AddEdge(req.CitingType, req.CitingID, req.CitedType, req.CitedID)
		if err != nil {
			switch {
			case errors.Is(err, graph.ErrDuplicateEdge):
				// Erwarteter Zustand, kein Fehler: vorhandene Kante zurückgeben.
				c.JSON(http.StatusOK, gin.H{"duplicate": true, "reference": edge})
			case errors.Is(err, graph.ErrUnknownType):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, graph.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				log.Error("Failed to create reference edge", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			}
			return
		}

		referenceEdgesCounter.Inc()
		c.JSON(http.StatusCreated, gin.H{"duplicate": false, "reference": edge})
	})

	// GET - "was zitiert X"
	rg.GET("/citing/:type/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c)
		if !ok {
			return
		}
		edges, err := g.EdgesCiting(c.Param("type"), id)
		if err != nil {
			if errors.Is(err, graph.ErrUnknownType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Error("Edge query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, edges)
	})

	// GET - "wer zitiert X"
	rg.GET("/cited-by/:type/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c)
		if !ok {
			return
		}
		edges, err := g.EdgesCitedBy(c.Param("type"), id)
		if err != nil {
			if errors.Is(err, graph.ErrUnknownType) {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			log.Error("Edge query failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, edges)
	})
}

// setupEntityRoutes konfiguriert die generische Endpunkt-Auflösung.
func setupEntityRoutes(router *gin.Engine, g *graph.Graph, log *zap.Logger) {
	rg := router.Group("/entities")

	rg.GET("/:type/:id", func(c *gin.Context) {
		id, ok := parseIDParam(c)
		if !ok {
			return
		}
		entity, err := g.ResolveEndpoint(c.Param("type"), id)
		if err != nil {
			switch {
			case errors.Is(err, graph.ErrUnknownType):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, graph.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				log.Error("Endpoint resolution failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"id":           entity.EntityID(),
			"type":         entity.TypeTag(),
			"title":        entity.DisplayTitle(),
			"doi":          entity.EntityDOI(),
			"citation_key": entity.EntityCitationKey(),
		})
	})
}

// setupArticleRoutes konfiguriert die Artikel-Endpunkte.
func setupArticleRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/articles")

	rg.GET("/", func(c *gin.Context) {
		var articles []models.Article
		if err := db.Order("created_at desc").Find(&articles).Error; err != nil {
			log.Error("Database query for articles failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, articles)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var article models.Article
		if err := db.First(&article, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
				return
			}
			log.Error("Database error while fetching article", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, article)
	})

	// POST - Artikel manuell anlegen (mit normalisierter DOI und Citation Key)
	rg.POST("/", func(c *gin.Context) {
		var article models.Article
		if err := c.ShouldBindJSON(&article); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		if article.Title == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
			return
		}
		if article.DOI != nil && *article.DOI != "" {
			norm, err := services.NormalizeDOI(*article.DOI)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			article.DOI = &norm
		}
		article.CitationKey = nil
		article.Source = "manual"

		err := db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(&article).Error; err != nil {
				return err
			}
			key := services.CitationKey(graph.TypeArticle, article.ID, derefDOI(article.DOI))
			if err := tx.Model(&article).Update("citation_key", key).Error; err != nil {
				return err
			}
			article.CitationKey = &key
			return nil
		})
		if err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				c.JSON(http.StatusConflict, gin.H{"error": "an article with this DOI already exists"})
				return
			}
			log.Error("Failed to create article", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create article"})
			return
		}

		log.Info("Article created", zap.Uint("id", article.ID), zap.String("title", article.Title))
		c.JSON(http.StatusCreated, article)
	})
}

// setupAuthorRoutes konfiguriert die Autoren-Endpunkte.
func setupAuthorRoutes(router *gin.Engine, db *gorm.DB, log *zap.Logger) {
	rg := router.Group("/authors")

	rg.GET("/", func(c *gin.Context) {
		var authors []models.Author
		if err := db.Order("last_name asc, first_name asc").Find(&authors).Error; err != nil {
			log.Error("Database query for authors failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, authors)
	})

	rg.GET("/:id", func(c *gin.Context) {
		var author models.Author
		if err := db.First(&author, c.Param("id")).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "author not found"})
				return
			}
			log.Error("Database error while fetching author", zap.String("id", c.Param("id")), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "database error"})
			return
		}
		c.JSON(http.StatusOK, author)
	})
}

// setupExportRoutes konfiguriert den Bibliographie-Export.
func setupExportRoutes(router *gin.Engine, exportService *services.ExportService, log *zap.Logger) {
	rg := router.Group("/export")

	rg.POST("/bibliography", func(c *gin.Context) {
		var req struct {
			EntityType string `json:"entity_type" binding:"required"`
			EntityID   uint   `json:"entity_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
			return
		}

		link, err := exportService.ExportBibliography(c.Request.Context(), req.EntityType, req.EntityID)
		if err != nil {
			switch {
			case errors.Is(err, graph.ErrUnknownType):
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			case errors.Is(err, graph.ErrNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			default:
				log.Error("Bibliography export failed", zap.Error(err))
				c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			}
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true, "s3_link": link})
	})
}

// parseIDParam liest den :id-Pfadparameter als uint; bei ungültiger Eingabe
// wird die Antwort direkt geschrieben.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return uint(id), true
}

func derefDOI(doi *string) string {
	if doi == nil {
		return ""
	}
	return *doi
}
