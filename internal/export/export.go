// Package export writes backend-rendered reports and the contact
// bulk-import CSV template to local files. Report content is produced
// server-side; the console only streams it to disk.
package export

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/kontali/konsole/internal/api"
)

// SaveReport streams a report body into downloadDir and returns the path.
func SaveReport(downloadDir, kind, format, fromDate, toDate string, body io.Reader) (string, error) {
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir download dir: %w", err)
	}
	path := filepath.Join(downloadDir, ReportFileName(kind, format, fromDate, toDate))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	if _, err := io.Copy(f, body); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}

// ReportFileName builds the local file name for an exported report.
func ReportFileName(kind, format, fromDate, toDate string) string {
	ext := "pdf"
	if format == api.FormatExcel {
		ext = "xlsx"
	}
	return fmt.Sprintf("%s-%s-%s.%s", kind, fromDate, toDate, ext)
}

// supplier/customer template blobs, fixed header plus two example rows,
// mirroring what the import endpoint expects.
const supplierTemplate = `navn,org_nummer,epost,telefon,adresse,postnummer,poststed,bankkonto,betalingsbetingelser,mva_kode,hovedbokskonto
Eksempel Leverandør AS,912345678,post@leverandor.no,+47 22 00 00 00,Storgata 1,0155,Oslo,1503.12.34567,30,25,2400
Nordisk Kontor AS,998765432,faktura@nordiskkontor.no,+47 55 00 00 00,Bryggen 8,5003,Bergen,3625.45.67890,14,25,2400
`

const customerTemplate = `navn,org_nummer,epost,telefon,adresse,postnummer,poststed,bankkonto,betalingsbetingelser,mva_kode,hovedbokskonto
Eksempel Kunde AS,913456789,faktura@kunde.no,+47 23 00 00 00,Industriveien 4,2005,Rælingen,1204.56.78901,14,3,1500
Fjordvik Handel AS,997654321,regnskap@fjordvik.no,+47 70 00 00 00,Sjøgata 12,6002,Ålesund,4212.34.56789,30,3,1500
`

// ContactTemplate returns the CSV template for a contact kind.
func ContactTemplate(kind string) (string, error) {
	switch kind {
	case api.ContactSuppliers:
		return supplierTemplate, nil
	case api.ContactCustomers:
		return customerTemplate, nil
	}
	return "", fmt.Errorf("unknown contact kind %q", kind)
}

// SaveContactTemplate writes the CSV template into downloadDir.
func SaveContactTemplate(downloadDir, kind string) (string, error) {
	tpl, err := ContactTemplate(kind)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return "", fmt.Errorf("mkdir download dir: %w", err)
	}
	path := filepath.Join(downloadDir, kind+"-import-mal.csv")
	if err := os.WriteFile(path, []byte(tpl), 0o644); err != nil {
		return "", fmt.Errorf("write template: %w", err)
	}
	return path, nil
}
