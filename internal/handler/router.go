package handler

import (
	"github.com/gin-gonic/gin"

	"giftshop/internal/auth"
)

// SetupRouter wires middleware and routes. Everything under /api/v1
// except the catalog reads and the payment callback requires a
// verified identity.
func SetupRouter(h *Handler, verifier *auth.Verifier) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(RecoveryMiddleware())
	r.Use(LoggerMiddleware())
	r.Use(CORSMiddleware())

	api := r.Group("/api/v1")
	{
		catalog := api.Group("/catalog")
		{
			catalog.GET("/list", h.ListAssets)
			catalog.GET("/detail", h.GetAsset)
			catalog.POST("/ingest", AuthMiddleware(verifier), h.IngestAsset)
		}

		account := api.Group("/account", AuthMiddleware(verifier))
		{
			account.GET("/balance", h.GetAccount)
			account.GET("/history", h.History)
		}

		purchase := api.Group("/purchase", AuthMiddleware(verifier))
		{
			purchase.POST("/execute", h.Purchase)
		}

		credit := api.Group("/credit", AuthMiddleware(verifier))
		{
			credit.POST("/issue", h.IssueCredit)
		}

		// The callback's trust boundary is the caller's verified
		// transaction proof, not a user credential.
		payment := api.Group("/payment")
		{
			payment.POST("/callback", h.SettleExternalPayment)
		}
	}

	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	return r
}
