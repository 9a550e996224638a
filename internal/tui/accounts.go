package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kontali/konsole/internal/api"
)

type accountState struct {
	items      []api.Account
	cursor     int
	search     textinput.Model
	typeFilter string // "" = all
	loading    bool

	form       api.Account
	formCursor int
	formInput  textinput.Model
}

var accountFields = []string{"Nummer", "Navn", "Type", "MVA-kode"}

var accountTypeFilters = []string{"", "eiendel", "gjeld", "inntekt", "kostnad"}

func (a *App) currentAccount() *api.Account {
	if a.accounts.cursor < 0 || a.accounts.cursor >= len(a.accounts.items) {
		return nil
	}
	return &a.accounts.items[a.accounts.cursor]
}

func (a *App) handleAccountsKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	ac := &a.accounts
	switch m.String() {
	case "up":
		if ac.cursor > 0 {
			ac.cursor--
		}
	case "down":
		if ac.cursor < len(ac.items)-1 {
			ac.cursor++
		}
	case "/":
		ac.search.Focus()
		return a, textinput.Blink
	case "f":
		ac.typeFilter = cycle(accountTypeFilters, ac.typeFilter)
		ac.loading = true
		return a, a.loadAccounts()
	case "n":
		a.modal = modalAccountForm
		ac.form = api.Account{Active: true}
		ac.formCursor = 0
		ac.formInput = textinput.New()
		ac.formInput.Focus()
		return a, textinput.Blink
	case "d":
		if acct := a.currentAccount(); acct != nil {
			return a, a.deleteAccountCmd(acct.Number)
		}
	case "R":
		ac.loading = true
		return a, a.loadAccounts()
	}
	return a, nil
}

func (a *App) handleAccountSearchKey(m tea.KeyMsg) tea.Cmd {
	switch m.String() {
	case "esc":
		a.accounts.search.Blur()
		return nil
	case "enter":
		a.accounts.search.Blur()
		a.accounts.loading = true
		return a.loadAccounts()
	}
	var cmd tea.Cmd
	a.accounts.search, cmd = a.accounts.search.Update(m)
	return cmd
}

func (a *App) handleAccountFormKey(m tea.KeyMsg) (tea.Model, tea.Cmd) {
	ac := &a.accounts
	switch m.String() {
	case "esc":
		a.modal = modalNone
		return a, nil
	case "enter", "down", "tab":
		a.commitAccountField()
		if ac.formCursor < len(accountFields)-1 {
			ac.formCursor++
		}
		ac.formInput.SetValue(accountFieldValue(ac.form, ac.formCursor))
		return a, nil
	case "up":
		a.commitAccountField()
		if ac.formCursor > 0 {
			ac.formCursor--
		}
		ac.formInput.SetValue(accountFieldValue(ac.form, ac.formCursor))
		return a, nil
	case "ctrl+s":
		a.commitAccountField()
		if ac.form.Number == "" || ac.form.Name == "" {
			a.setError(fmt.Errorf("kontonummer og navn er påkrevd"))
			return a, nil
		}
		form := ac.form
		a.modal = modalNone
		return a, a.createAccountCmd(form)
	}
	var cmd tea.Cmd
	ac.formInput, cmd = ac.formInput.Update(m)
	return a, cmd
}

func (a *App) commitAccountField() {
	ac := &a.accounts
	raw := strings.TrimSpace(ac.formInput.Value())
	switch ac.formCursor {
	case 0:
		ac.form.Number = raw
	case 1:
		ac.form.Name = raw
	case 2:
		ac.form.AccountType = raw
	default:
		ac.form.VATCode = raw
	}
}

func accountFieldValue(acct api.Account, field int) string {
	switch field {
	case 0:
		return acct.Number
	case 1:
		return acct.Name
	case 2:
		return acct.AccountType
	default:
		return acct.VATCode
	}
}

func (a *App) createAccountCmd(acct api.Account) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		if err := client.CreateAccount(a.ctx, acct); err != nil {
			return errMsg{err}
		}
		return accountsChangedMsg("Konto opprettet: " + acct.Number + " " + acct.Name)
	}
}

func (a *App) deleteAccountCmd(number string) tea.Cmd {
	client := a.api
	return func() tea.Msg {
		if err := client.DeleteAccount(a.ctx, number); err != nil {
			return errMsg{err}
		}
		return accountsChangedMsg("Konto slettet: " + number)
	}
}

func (a *App) renderAccounts() string {
	ac := a.accounts
	var b strings.Builder
	b.WriteString(titleStyle.Render("Kontoplan"))
	b.WriteString("\n\n")
	b.WriteString("Søk: " + ac.search.View())
	if ac.typeFilter != "" {
		b.WriteString(dimStyle.Render("   type: " + ac.typeFilter))
	}
	b.WriteString("\n\n")

	switch {
	case ac.loading:
		b.WriteString(dimStyle.Render("Henter kontoplan...\n"))
	case len(ac.items) == 0:
		b.WriteString(dimStyle.Render("Ingen kontoer.\n"))
	}

	for i, acct := range ac.items {
		prefix := "  "
		if i == ac.cursor {
			prefix = "> "
		}
		active := greenStyle.Render("aktiv")
		if !acct.Active {
			active = dimStyle.Render("inaktiv")
		}
		vat := ""
		if acct.VATCode != "" {
			vat = dimStyle.Render("mva " + acct.VATCode)
		}
		b.WriteString(fmt.Sprintf("%s%-6s %-34s %-12s %-8s %s\n",
			prefix, acct.Number, truncate(acct.Name, 34), acct.AccountType, vat, active))
	}

	b.WriteString("\n")
	b.WriteString(dimStyle.Render("↑/↓ velg  / søk  f type  n ny konto  d slett  R oppdater"))
	return b.String()
}

func (a *App) renderAccountFormModal() string {
	ac := a.accounts
	var b strings.Builder
	b.WriteString(headerStyle.Render("Ny konto"))
	b.WriteString("\n")
	for i, label := range accountFields {
		if i == ac.formCursor {
			b.WriteString(fmt.Sprintf("> %-12s %s\n", label, ac.formInput.View()))
			continue
		}
		b.WriteString(fmt.Sprintf("  %-12s %s\n", label, accountFieldValue(ac.form, i)))
	}
	b.WriteString(dimStyle.Render("enter/piler neste felt  ctrl+s lagre  esc avbryt"))
	return modalStyle.Render(b.String())
}
