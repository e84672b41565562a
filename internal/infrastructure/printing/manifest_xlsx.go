package printing

import (
	"fmt"
	"io"

	appfulfillment "github.com/dropship/backend/internal/application/fulfillment"
	"github.com/xuri/excelize/v2"
)

const manifestSheet = "Manifeste"

// ManifestWriter renders a pickup manifest as an XLSX workbook, the format
// couriers and warehouse staff actually open. One section per sub-order:
// the client to deliver to, the lines to hand over and the amount to
// collect on delivery.
type ManifestWriter struct{}

// NewManifestWriter creates a new ManifestWriter
func NewManifestWriter() *ManifestWriter {
	return &ManifestWriter{}
}

// WriteXLSX renders the manifest into w
func (mw *ManifestWriter) WriteXLSX(manifest *appfulfillment.Manifest, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", manifestSheet)

	// header block
	set := func(cell string, value interface{}) {
		_ = f.SetCellValue(manifestSheet, cell, value)
	}
	set("A1", "Bon d'enlevement")
	set("B1", manifest.Code)
	set("A2", "Fournisseur")
	set("B2", manifest.SupplierID.String())
	set("A3", "Genere le")
	set("B3", manifest.GeneratedAt.Format("2006-01-02 15:04:05"))
	set("A4", "Colis")
	set("B4", manifest.PackageCount)
	set("A5", "Poids (kg)")
	set("B5", manifest.WeightKg.InexactFloat64())

	// table header
	header := []string{"Sous-commande", "Client", "Telephone", "Adresse", "Produit", "Variante", "Quantite", "Prix unitaire", "Total ligne"}
	headerRow := 7
	for i, h := range header {
		cell, err := excelize.CoordinatesToCellName(i+1, headerRow)
		if err != nil {
			return fmt.Errorf("failed to build header cell: %w", err)
		}
		set(cell, h)
	}

	row := headerRow + 1
	for _, section := range manifest.Rows {
		for _, line := range section.Lines {
			set(fmt.Sprintf("A%d", row), section.SubOrderID.String())
			set(fmt.Sprintf("B%d", row), section.ClientName)
			set(fmt.Sprintf("C%d", row), section.ClientPhone)
			set(fmt.Sprintf("D%d", row), section.ClientAddress)
			set(fmt.Sprintf("E%d", row), line.ProductName)
			set(fmt.Sprintf("F%d", row), line.VariationLabel)
			set(fmt.Sprintf("G%d", row), line.Quantity)
			set(fmt.Sprintf("H%d", row), line.UnitSalePrice.InexactFloat64())
			set(fmt.Sprintf("I%d", row), line.Total.InexactFloat64())
			row++
		}

		set(fmt.Sprintf("H%d", row), "Montant a encaisser")
		set(fmt.Sprintf("I%d", row), section.SubTotal.InexactFloat64())
		row++
	}

	row++
	set(fmt.Sprintf("H%d", row), "Total general")
	set(fmt.Sprintf("I%d", row), manifest.GrandTotal.InexactFloat64())

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write manifest workbook: %w", err)
	}
	return nil
}
