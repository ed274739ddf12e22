package kicktipp

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mwirth/tippbot/internal/pkg/models"
)

// rawRow is one scraped datarow of the #tippabgabeSpiele table, extracted
// in the browser before any interpretation happens in Go.
type rawRow struct {
	FormID  string `json:"formId"`
	Date    string `json:"date"` // "02.01.06 15:04" in site-local time, carried forward from the last row that showed one
	Home    string `json:"home"`
	Away    string `json:"away"`
	Odds    string `json:"odds"` // "2.10 / 3.30 / 3.60" as rendered in the quote link
	HomeTip string `json:"homeTip"`
	AwayTip string `json:"awayTip"`
}

// extractRowsJS walks the tipping table in the page. Kicktipp only prints
// the kickoff time on the first row of each slot, so the walker carries the
// last seen time down to the following rows. The form id is taken from the
// tip input names (spieltippForms[<id>].heimTipp).
const extractRowsJS = `(() => {
	const rows = document.querySelectorAll('#tippabgabeSpiele tbody tr');
	const out = [];
	let lastDate = '';
	for (const row of rows) {
		const cells = row.querySelectorAll('td');
		if (cells.length === 0) { continue; }
		const dateText = (cells[0].textContent || '').trim();
		if (dateText) { lastDate = dateText; }
		if (!row.classList.contains('datarow') && cells.length < 5) { continue; }

		const homeInput = row.querySelector('input[name$=".heimTipp"]');
		const awayInput = row.querySelector('input[name$=".gastTipp"]');
		if (!homeInput) { continue; }
		const name = homeInput.getAttribute('name') || '';
		const idMatch = name.match(/spieltippForms\[([^\]]+)\]/);

		const quoteLink = cells.length > 4 ? cells[4].querySelector('a') : null;
		out.push({
			formId: idMatch ? idMatch[1] : '',
			date: lastDate,
			home: (cells[1].textContent || '').trim(),
			away: (cells[2].textContent || '').trim(),
			odds: quoteLink ? (quoteLink.textContent || '').trim() : '',
			homeTip: homeInput.value || '',
			awayTip: awayInput ? (awayInput.value || '') : '',
		});
	}
	return out;
})()`

const kickoffLayout = "02.01.06 15:04"

// parseRow turns a scraped row into a Match snapshot. Only structurally
// broken rows fail; unparseable odds are kept as zero values so the
// malformed-odds policy downstream can report them per match.
func parseRow(r rawRow, competition string, loc *time.Location) (models.Match, error) {
	if r.FormID == "" {
		return models.Match{}, fmt.Errorf("row has no form id")
	}
	if r.Home == "" || r.Away == "" {
		return models.Match{}, fmt.Errorf("row %s has empty team names", r.FormID)
	}

	kickoff, err := time.ParseInLocation(kickoffLayout, r.Date, loc)
	if err != nil {
		return models.Match{}, fmt.Errorf("row %s: parse kickoff %q: %w", r.FormID, r.Date, err)
	}

	m := models.Match{
		ID:          r.FormID,
		Competition: competition,
		HomeTeam:    r.Home,
		AwayTeam:    r.Away,
		Kickoff:     kickoff.UTC(),
		Odds:        parseOdds(r.Odds),
		Tipped:      models.TippedStateOpen,
	}

	if tip, ok := parseTippedScore(r.FormID, r.HomeTip, r.AwayTip); ok {
		m.Tipped = models.TippedStateTipped
		m.TippedScore = tip
	}
	return m, nil
}

// parseOdds splits the rendered quote text "home / draw / away". Anything
// that does not parse stays zero and gets flagged as malformed later.
func parseOdds(text string) models.OddsTriple {
	parts := strings.Split(text, "/")
	if len(parts) != 3 {
		return models.OddsTriple{}
	}
	parse := func(s string) float64 {
		// German pages render a decimal comma.
		s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0
		}
		return v
	}
	return models.OddsTriple{
		HomeWin: parse(parts[0]),
		Draw:    parse(parts[1]),
		AwayWin: parse(parts[2]),
	}
}

// parseTippedScore interprets the current tip input values. A tip counts as
// present only when both fields hold numbers.
func parseTippedScore(matchID, homeVal, awayVal string) (*models.Tip, bool) {
	homeVal = strings.TrimSpace(homeVal)
	awayVal = strings.TrimSpace(awayVal)
	if homeVal == "" || awayVal == "" {
		return nil, false
	}
	home, err := strconv.Atoi(homeVal)
	if err != nil || home < 0 {
		return nil, false
	}
	away, err := strconv.Atoi(awayVal)
	if err != nil || away < 0 {
		return nil, false
	}
	return &models.Tip{MatchID: matchID, HomeGoals: home, AwayGoals: away}, true
}
