package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
	"github.com/kontali/konsole/internal/brreg"
	"github.com/kontali/konsole/internal/export"
)

type contactState struct {
	kind      string // suppliers | customers
	items     []api.Contact
	cursor    int
	selection *MultiSelect[string]
	search    textinput.Model
	loading   bool

	form       api.Contact
	formCursor int
	formInput  textinput.Model
	lookedUp   string // last org number sent to brreg

	bulkInput textinput.Model
}

// contact form field order. The org number sits second so the registry
// lookup can fill the rest.
var contactFields = []string{
	"Navn", "Org.nummer", "E-post", "Telefon",
	"Gate", "Postnummer", "Poststed", "Land",
	"Bankkonto", "Betalingsdager", "MVA-kode", "Hovedbokskonto",
}

func (a *App) currentContact() *api.Contact {
	if a.contacts.cursor < 0 || a.contacts.cursor >= len(a.contacts.items) {
		return nil
	}
	return &a.contacts.items[a.contacts.cursor]
}

func (a *App) handleContactsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &a.contacts
	switch m.String() {
	case "up":
		if c.cursor > 0 {
			c.cursor--
		}
	case "down":
		if c.cursor < len(c.items)-1 {
			c.cursor++
		}
	case "tab":
		if c.kind == api.ContactSuppliers {
			c.kind = api.ContactCustomers
		} else {
			c.kind = api.ContactSuppliers
		}
		c.selection.ClearAll()
		c.loading = true
		return a, a.loadContacts()
	case "/":
		c.search.Focus()
		return a, textinput.Blink
	case " ", "space":
		if ct := a.currentContact(); ct != nil {
			c.selection.Toggle(ct.ID)
		}
	case "a":
		ids := make([]string, len(c.items))
		for i, ct := range c.items {
			ids[i] = ct.ID
		}
		c.selection.ToggleAll(ids)
	case "n":
		a.openContactForm()
		return a, textinput.Blink
	case "d":
		if ct := a.currentContact(); ct != nil {
			return a, a.deleteContactsCmd([]string{ct.ID})
		}
	case "D":
		if c.selection.Len() > 0 {
			return a, a.deleteContactsCmd(c.selection.IDs())
		}
	case "u":
		a.modal = modalBulkImport
		c.bulkInput = textinput.New()
		c.bulkInput.Placeholder = "sti/til/kontakter.csv"
		c.bulkInput.Focus()
		return a, textinput.Blink
	case "t":
		return a, a.saveTemplateCmd()
	case "R":
		c.loading = true
		return a, a.loadContacts()
	}
	return a, nil
}

func (a *App) handleContactSearchKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "esc":
		a.contacts.search.Blur()
		return nil
	case "enter":
		a.contacts.search.Blur()
		a.contacts.loading = true
		return a.loadContacts()
	}
	var cmd tea.Cmd
	a.contacts.search, cmd = a.contacts.search.Update(m)
	return cmd
}

func (a *App) openContactForm() {
	a.modal = modalContactForm
	a.contacts.form = api.Contact{Country: "Norge", PaymentTerms: 14}
	a.contacts.formCursor = 0
	a.contacts.lookedUp = ""
	a.contacts.formInput = textinput.New()
	a.contacts.formInput.SetValue(a.contacts.form.Name)
	a.contacts.formInput.Focus()
}

func (a *App) handleContactFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	c := &a.contacts
	switch m.String() {
	case "esc":
		a.modal = modalNone
		return a, nil
	case "enter", "down", "tab":
		lookupCmd := a.commitFormField()
		if c.formCursor < len(contactFields)-1 {
			c.formCursor++
		}
		c.formInput.SetValue(contactFieldValue(c.form, c.formCursor))
		return a, lookupCmd
	case "up":
		a.commitFormField()
		if c.formCursor > 0 {
			c.formCursor--
		}
		c.formInput.SetValue(contactFieldValue(c.form, c.formCursor))
		return a, nil
	case "ctrl+s":
		a.commitFormField()
		if strings.TrimSpace(c.form.Name) == "" {
			a.setError(fmt.Errorf("navn er påkrevd"))
			return a, nil
		}
		form := c.form
		a.modal = modalNone
		return a, a.createContactCmd(form)
	}
	var cmd tea.Cmd
	c.formInput, cmd = c.formInput.Update(m)
	return a, cmd
}

// commitFormField writes the input into the form. Leaving the org number
// field with nine digits triggers a registry lookup, once per value.
func (a *App) commitFormField() tea.Cmd {
	c := &a.contacts
	raw := strings.TrimSpace(c.formInput.Value())
	setContactField(&c.form, c.formCursor, raw)
	if c.formCursor == 1 && brreg.ShouldLookup(raw) && raw != c.lookedUp {
		c.lookedUp = raw
		return a.brregCmd(raw)
	}
	return nil
}

func contactFieldValue(ct api.Contact, field int) string {
	switch field {
	case 0:
		return ct.Name
	case 1:
		return ct.OrgNumber
	case 2:
		return ct.Email
	case 3:
		return ct.Phone
	case 4:
		return ct.Street
	case 5:
		return ct.PostalCode
	case 6:
		return ct.City
	case 7:
		return ct.Country
	case 8:
		return ct.BankAccount
	case 9:
		if ct.PaymentTerms == 0 {
			return ""
		}
		return strconv.Itoa(ct.PaymentTerms)
	case 10:
		return ct.DefaultVAT
	default:
		return ct.LedgerAccount
	}
}

func setContactField(ct *api.Contact, field int, raw string) {
	switch field {
	case 0:
		ct.Name = raw
	case 1:
		ct.OrgNumber = raw
	case 2:
		ct.Email = raw
	case 3:
		ct.Phone = raw
	case 4:
		ct.Street = raw
	case 5:
		ct.PostalCode = raw
	case 6:
		ct.City = raw
	case 7:
		ct.Country = raw
	case 8:
		ct.BankAccount = raw
	case 9:
		if n, err := strconv.Atoi(raw); err == nil {
			ct.PaymentTerms = n
		}
	case 10:
		ct.DefaultVAT = raw
	default:
		ct.LedgerAccount = raw
	}
}

// applyBrregUnit fills empty form fields from the registry hit. Fields
// the operator already typed are left alone.
func (a *App) applyBrregUnit(u brreg.Unit) {
	f := &a.contacts.form
	if f.Name == "" {
		f.Name = u.Name
	}
	if f.Street == "" {
		f.Street = u.Street
	}
	if f.PostalCode == "" {
		f.PostalCode = u.PostalCode
	}
	if f.City == "" {
		f.City = u.City
	}
	if f.Country == "" || f.Country == "Norge" {
		f.Country = u.Country
	}
	if a.modal == modalContactForm {
		a.contacts.formInput.SetValue(contactFieldValue(*f, a.contacts.formCursor))
	}
	a.SetStatus("Hentet fra Enhetsregisteret: " + u.Name)
}

func (a *App) handleBulkImportKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.String() {
	case "esc":
		a.modal = modalNone
		return a, nil
	case "enter":
		path := strings.TrimSpace(a.contacts.bulkInput.Value())
		if path == "" {
			return a, nil
		}
		a.modal = modalNone
		return a, a.bulkImportCmd(path)
	}
	var cmd tea.Cmd
	a.contacts.bulkInput, cmd = a.contacts.bulkInput.Update(m)
	return a, cmd
}

// --- commands ---

func (a *App) brregCmd(orgNumber string) tea.Cmd {
	return cmd(func() (brregMsg, error) {
		u, err := a.brreg.Lookup(a.ctx, orgNumber)
		return brregMsg(u), err
	})
}

func (a *App) createContactCmd(ct api.Contact) tea.Cmd {
	client, kind := a.api, a.contacts.kind
	return func() tea.Msg {
		if err := client.CreateContact(a.ctx, kind, ct); err != nil {
			return errMsg{err}
		}
		return contactsChangedMsg("Kontakt opprettet: " + ct.Name)
	}
}

func (a *App) deleteContactsCmd(ids []string) tea.Cmd {
	client, kind := a.api, a.contacts.kind
	a.contacts.selection.ClearAll()
	return func() tea.Msg {
		for _, id := range ids {
			if err := client.DeleteContact(a.ctx, kind, id); err != nil {
				return errMsg{err}
			}
		}
		return contactsChangedMsg(fmt.Sprintf("Slettet %d kontakter", len(ids)))
	}
}

func (a *App) bulkImportCmd(path string) tea.Cmd {
	client, kind := a.api, a.contacts.kind
	return func() tea.Msg {
		f, err := os.Open(path)
		if err != nil {
			return errMsg{fmt.Errorf("åpne %s: %w", path, err)}
		}
		defer f.Close()
		res, err := client.BulkImportContacts(a.ctx, kind, filepath.Base(path), f)
		if err != nil {
			return errMsg{err}
		}
		return bulkImportDoneMsg{Result: res}
	}
}

func (a *App) saveTemplateCmd() tea.Cmd {
	kind, dir := a.contacts.kind, a.cfg.UI.DownloadDir
	return func() tea.Msg {
		path, err := export.SaveContactTemplate(dir, kind)
		if err != nil {
			return errMsg{err}
		}
		return templateSavedMsg(path)
	}
}

func fmtBulkImport(r api.BulkImportResult) string {
	msg := fmt.Sprintf("Importerte %d kontakter, %d hoppet over", r.Imported, r.Skipped)
	if len(r.Errors) > 0 {
		msg += fmt.Sprintf(" (%d feil)", len(r.Errors))
	}
	return msg
}

// --- rendering ---

func (a *App) renderContacts() string {
	c := a.contacts
	var b strings.Builder
	kindLabel := "Leverandører"
	if c.kind == api.ContactCustomers {
		kindLabel = "Kunder"
	}
	b.WriteString(titleStyle.Render("Kontakter · " + kindLabel))
	b.WriteString("\n\n")
	b.WriteString("Søk: " + c.search.View())
	if c.selection.Len() > 0 {
		mark := "noen valgt"
		if c.selection.IsAllSelected(len(c.items)) {
			mark = "alle valgt"
		}
		b.WriteString(dimStyle.Render(fmt.Sprintf("   %d %s", c.selection.Len(), mark)))
	}
	b.WriteString("\n\n")

	switch {
	case c.loading:
		b.WriteString(dimStyle.Render("Henter kontakter...\n"))
	case len(c.items) == 0:
		b.WriteString(dimStyle.Render("Ingen kontakter.\n"))
	}

	for i, ct := range c.items {
		prefix := "  "
		if i == c.cursor {
			prefix = "> "
		}
		box := "[ ]"
		if c.selection.Has(ct.ID) {
			box = "[x]"
		}
		b.WriteString(fmt.Sprintf("%s%s %-30s %-10s %-26s %s\n",
			prefix, box, truncate(ct.Name, 30), ct.OrgNumber,
			truncate(ct.Email, 26), dimStyle.Render(ct.City)))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("tab lev/kunde  / søk  space velg  a velg alle  n ny  d slett  D slett valgte  u importer  t mal  R oppdater"))
	return b.String()
}

func (a *App) renderContactFormModal() string {
	c := a.contacts
	var b strings.Builder
	title := "Ny leverandør"
	if c.kind == api.ContactCustomers {
		title = "Ny kunde"
	}
	b.WriteString(headerStyle.Render(title))
	b.WriteString("\n")
	for i, label := range contactFields {
		if i == c.formCursor {
			b.WriteString(fmt.Sprintf("> %-16s %s\n", label, c.formInput.View()))
			continue
		}
		b.WriteString(fmt.Sprintf("  %-16s %s\n", label, contactFieldValue(c.form, i)))
	}
	b.WriteString(dimStyle.Render("enter/piler neste felt  ctrl+s lagre  esc avbryt"))
	return modalStyle.Render(b.String())
}

func (a *App) renderBulkImportModal() string {
	body := headerStyle.Render("Importer kontakter (CSV/Excel)") + "\n" +
		a.contacts.bulkInput.View() + "\n" +
		dimStyle.Render("enter importer  esc avbryt  (t i listen lagrer mal)")
	return modalStyle.Render(body)
}
