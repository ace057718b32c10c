package handlers

import (
	"net/http"

	"github.com/gorilla/mux"

	"iap-backoffice/models"
	"iap-backoffice/utils"
)

// TablesHandler serves the code -> label tables the frontend renders statuses with.
type TablesHandler struct {
	stage string
}

func NewTablesHandler(stage string) *TablesHandler {
	return &TablesHandler{stage: stage}
}

func (h *TablesHandler) GetTables(w http.ResponseWriter, r *http.Request) {
	utils.SendJSON(w, http.StatusOK, models.AllTables(h.stage))
}

func (h *TablesHandler) GetTable(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	table, ok := models.TableByName(name)
	if !ok {
		utils.SendErrorResponse(w, http.StatusNotFound, "Unknown table: "+name)
		return
	}
	utils.SendJSON(w, http.StatusOK, table)
}
