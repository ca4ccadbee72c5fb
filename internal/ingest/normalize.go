// Package ingest turns decoded provider documents into domain records. The
// functions are pure: they never touch the network or the store.
package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/cricket-analytics/internal/domain/ingestion"
	"github.com/riskibarqy/cricket-analytics/internal/domain/match"
	"github.com/riskibarqy/cricket-analytics/internal/domain/player"
	"github.com/riskibarqy/cricket-analytics/internal/domain/playerstats"
	"github.com/riskibarqy/cricket-analytics/internal/platform/id"
)

var (
	victoryPattern = regexp.MustCompile(`(?i)^(.+?)\s+won\s+by\s+(?:an\s+innings\s+and\s+)?(\d+)\s+(runs?|wkts?|wickets?)`)
	birthSuffix    = regexp.MustCompile(`\s*\(.*\)\s*$`)
	birthLayouts   = []string{"2006-01-02", "January 02, 2006", "January 2, 2006", "Jan 2, 2006", "02 Jan 2006", "2 January 2006"}
)

// NormalizePlayer maps a provider player profile. Only the name is
// required; absent optional fields stay empty.
func NormalizePlayer(raw map[string]any) (player.Player, error) {
	name, err := firstString(raw, "", "name", "fullName")
	if err != nil {
		return player.Player{}, err
	}
	if name == "" {
		return player.Player{}, ingestion.MissingField("name")
	}

	var p player.Player
	p.Name = name

	ref, ok, err := getInt64(raw, "", "id")
	if err != nil {
		return player.Player{}, err
	}
	if ok {
		p.ID = id.Provider("player", ref)
	}

	if p.Country, err = firstString(raw, "", "country", "intlTeam"); err != nil {
		return player.Player{}, err
	}
	role, err := getString(raw, "", "role")
	if err != nil {
		return player.Player{}, err
	}
	p.Role = player.NormalizeRole(role)
	if p.BattingStyle, err = firstString(raw, "", "bat", "battingStyle"); err != nil {
		return player.Player{}, err
	}
	if p.BowlingStyle, err = firstString(raw, "", "bowl", "bowlingStyle"); err != nil {
		return player.Player{}, err
	}

	dob, err := firstString(raw, "", "DoB", "dateOfBirth")
	if err != nil {
		return player.Player{}, err
	}
	if dob != "" {
		parsed, err := parseBirthDate(dob)
		if err != nil {
			return player.Player{}, ingestion.TypeMismatch("DoB", err.Error())
		}
		p.DateOfBirth = &parsed
	}

	switch p.Role {
	case "", player.RoleBatsman, player.RoleBowler, player.RoleAllRounder, player.RoleWicketKeeper:
	default:
		// Coaches and officials show up in squad lists.
		p.Role = ""
	}
	return p.Normalize(), nil
}

func parseBirthDate(value string) (time.Time, error) {
	v := birthSuffix.ReplaceAllString(strings.TrimSpace(value), "")
	for _, layout := range birthLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", value)
}

// NormalizeMatch maps a provider matchInfo object, or an entry wrapping
// one, onto a match.
func NormalizeMatch(raw map[string]any) (match.Match, error) {
	info := raw
	if nested := getMap(raw, "matchInfo"); nested != nil {
		info = nested
	}

	ref, ok, err := getInt64(info, "", "matchId")
	if err != nil {
		return match.Match{}, err
	}
	if !ok {
		return match.Match{}, ingestion.MissingField("matchId")
	}

	team1, team1Short, err := teamName(info, "team1")
	if err != nil {
		return match.Match{}, err
	}
	team2, team2Short, err := teamName(info, "team2")
	if err != nil {
		return match.Match{}, err
	}

	date, err := startDate(info)
	if err != nil {
		return match.Match{}, err
	}

	matchType, err := getString(info, "", "matchType")
	if err != nil {
		return match.Match{}, err
	}
	formatText, err := firstString(info, "", "matchFormat", "format")
	if err != nil {
		return match.Match{}, err
	}
	if formatText == "" {
		return match.Match{}, ingestion.MissingField("matchFormat")
	}
	format, err := mapFormat(formatText, matchType)
	if err != nil {
		return match.Match{}, err
	}

	m := match.Match{
		ID:     id.Provider("match", ref),
		Team1:  team1,
		Team2:  team2,
		Date:   date,
		Format: format,
	}

	desc, err := getString(info, "", "matchDesc")
	if err != nil {
		return match.Match{}, err
	}
	m.Title = team1 + " vs " + team2
	if desc != "" {
		m.Title += ", " + desc
	}

	seriesRef, ok, err := getInt64(info, "", "seriesId")
	if err != nil {
		return match.Match{}, err
	}
	if ok {
		seriesID := id.Provider("series", seriesRef)
		m.SeriesID = &seriesID
	}

	venueInfo := getMap(info, "venueInfo")
	if m.Venue, err = getString(venueInfo, "venueInfo", "ground"); err != nil {
		return match.Match{}, err
	}
	if m.City, err = getString(venueInfo, "venueInfo", "city"); err != nil {
		return match.Match{}, err
	}

	state, err := getString(info, "", "state")
	if err != nil {
		return match.Match{}, err
	}
	m.Status = mapState(state)

	statusText, err := getString(info, "", "status")
	if err != nil {
		return match.Match{}, err
	}
	m.Result = statusText

	aliases := map[string]string{
		strings.ToLower(team1): team1, strings.ToLower(team2): team2,
	}
	if team1Short != "" {
		aliases[strings.ToLower(team1Short)] = team1
	}
	if team2Short != "" {
		aliases[strings.ToLower(team2Short)] = team2
	}
	if groups := victoryPattern.FindStringSubmatch(statusText); groups != nil {
		if winner, ok := aliases[strings.ToLower(strings.TrimSpace(groups[1]))]; ok {
			margin, _ := strconv.Atoi(groups[2])
			m.Winner = winner
			m.VictoryMargin = &margin
			m.VictoryType = "runs"
			if !strings.HasPrefix(strings.ToLower(groups[3]), "run") {
				m.VictoryType = "wickets"
			}
		}
	}

	toss := getMap(info, "tossResults")
	tossWinner, err := firstString(toss, "tossResults", "tossWinnerName", "tossWinner")
	if err != nil {
		return match.Match{}, err
	}
	if winner, ok := aliases[strings.ToLower(tossWinner)]; ok {
		m.TossWinner = winner
		decision, err := getString(toss, "tossResults", "decision")
		if err != nil {
			return match.Match{}, err
		}
		m.TossDecision = mapTossDecision(decision)
	}

	return m.Normalize(), nil
}

func teamName(info map[string]any, key string) (string, string, error) {
	team := getMap(info, key)
	name, err := firstString(team, key, "teamName", "name")
	if err != nil {
		return "", "", err
	}
	if name == "" {
		return "", "", ingestion.MissingField(key + ".teamName")
	}
	short, err := firstString(team, key, "teamSName", "shortName")
	if err != nil {
		return "", "", err
	}
	return name, short, nil
}

// startDate accepts epoch milliseconds as a number or digit string, or an
// ISO date or timestamp.
func startDate(info map[string]any) (time.Time, error) {
	for _, key := range []string{"startDate", "matchStartTimestamp"} {
		switch typed := lookup(info, key).(type) {
		case nil:
			continue
		case string:
			text := strings.TrimSpace(typed)
			if text == "" {
				continue
			}
			if millis, err := strconv.ParseInt(text, 10, 64); err == nil {
				return match.TruncateDate(time.UnixMilli(millis).UTC()), nil
			}
			t, err := match.ParseDate(text)
			if err != nil {
				return time.Time{}, ingestion.TypeMismatch(key, "expected epoch milliseconds or a YYYY-MM-DD date")
			}
			return t, nil
		default:
			millis, _, err := getInt64(info, "", key)
			if err != nil {
				return time.Time{}, err
			}
			return match.TruncateDate(time.UnixMilli(millis).UTC()), nil
		}
	}
	return time.Time{}, ingestion.MissingField("startDate")
}

// mapFormat maps provider formats. T20 between national sides is a T20I.
func mapFormat(value, matchType string) (match.Format, error) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "TEST":
		return match.FormatTest, nil
	case "ODI":
		return match.FormatODI, nil
	case "T20I":
		return match.FormatT20I, nil
	case "T20":
		if strings.EqualFold(strings.TrimSpace(matchType), "International") {
			return match.FormatT20I, nil
		}
		return match.FormatT20, nil
	default:
		return "", ingestion.TypeMismatch("matchFormat", fmt.Sprintf("unsupported format %q", value))
	}
}

func mapState(state string) string {
	switch strings.ToLower(strings.TrimSpace(state)) {
	case "", "preview", "upcoming", "scheduled":
		return match.StatusScheduled
	case "complete", "completed", "result", "finished":
		return match.StatusCompleted
	case "abandon", "abandoned", "no result", "cancelled":
		return match.StatusAbandoned
	default:
		// Toss, innings break, stumps, rain delays and the like.
		return match.StatusLive
	}
}

func mapTossDecision(value string) string {
	v := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.HasPrefix(v, "bat"):
		return "bat"
	case strings.HasPrefix(v, "bowl"), strings.HasPrefix(v, "field"):
		return "bowl"
	default:
		return ""
	}
}

// NormalizeLiveScore maps a match list entry: matchInfo plus the optional
// matchScore block with up to two innings per side.
func NormalizeLiveScore(raw map[string]any) (ingestion.LiveScore, error) {
	m, err := NormalizeMatch(raw)
	if err != nil {
		return ingestion.LiveScore{}, err
	}

	info := raw
	if nested := getMap(raw, "matchInfo"); nested != nil {
		info = nested
	}
	out := ingestion.LiveScore{Match: m}
	if out.SeriesName, err = getString(info, "", "seriesName"); err != nil {
		return ingestion.LiveScore{}, err
	}
	if out.StatusText, err = getString(info, "", "status"); err != nil {
		return ingestion.LiveScore{}, err
	}

	score := getMap(raw, "matchScore")
	if out.Team1Scores, err = inningsScores(getMap(score, "team1Score"), "matchScore.team1Score"); err != nil {
		return ingestion.LiveScore{}, err
	}
	if out.Team2Scores, err = inningsScores(getMap(score, "team2Score"), "matchScore.team2Score"); err != nil {
		return ingestion.LiveScore{}, err
	}
	return out, nil
}

func inningsScores(src map[string]any, path string) ([]ingestion.InningsScore, error) {
	var out []ingestion.InningsScore
	for i, key := range []string{"inngs1", "inngs2"} {
		inn := getMap(src, key)
		if inn == nil {
			continue
		}
		field := join(path, key)
		runs, err := getInt(inn, field, "runs")
		if err != nil {
			return nil, err
		}
		wickets, err := getInt(inn, field, "wickets")
		if err != nil {
			return nil, err
		}
		overs, err := getFloat(inn, field, "overs")
		if err != nil {
			return nil, err
		}
		inningsID, ok, err := getInt64(inn, field, "inningsId")
		if err != nil {
			return nil, err
		}
		number := i + 1
		if ok && inningsID > 0 {
			number = int(inningsID)
		}
		out = append(out, ingestion.InningsScore{Innings: number, Runs: runs, Wickets: wickets, Overs: overs})
	}
	return out, nil
}

// MatchEntries flattens a live or recent matches document into its match
// entries. The enclosing matchType is copied into each matchInfo so format
// mapping can tell internationals apart.
func MatchEntries(doc map[string]any) []map[string]any {
	var out []map[string]any
	for _, group := range objects(doc, "typeMatches") {
		matchType, _ := getString(group, "", "matchType")
		for _, series := range objects(group, "seriesMatches") {
			wrapper := getMap(series, "seriesAdWrapper")
			if wrapper == nil {
				continue
			}
			for _, entry := range objects(wrapper, "matches") {
				info := getMap(entry, "matchInfo")
				if info == nil {
					out = append(out, entry)
					continue
				}
				copied := make(map[string]any, len(info)+1)
				for k, v := range info {
					copied[k] = v
				}
				if _, ok := copied["matchType"]; !ok && matchType != "" {
					copied["matchType"] = matchType
				}
				wrapped := map[string]any{"matchInfo": copied}
				if score, ok := entry["matchScore"]; ok {
					wrapped["matchScore"] = score
				}
				out = append(out, wrapped)
			}
		}
	}
	return out
}

// NormalizeScorecard maps a scorecard document into one entry per player
// per innings. Batting and bowling lines of the same player and innings are
// merged. Batters who have not faced a ball and are not out are left out.
func NormalizeScorecard(matchID string, raw map[string]any) ([]ingestion.ScorecardEntry, error) {
	matchID = strings.TrimSpace(matchID)
	if matchID == "" {
		return nil, ingestion.MissingField("matchId")
	}
	key := "scoreCard"
	innings := objects(raw, key)
	if innings == nil {
		key = "scorecard"
		innings = objects(raw, key)
	}
	if innings == nil {
		return nil, ingestion.MissingField("scoreCard")
	}

	var (
		out   []ingestion.ScorecardEntry
		index = make(map[string]int)
	)
	entryFor := func(playerID, name string, number int) *ingestion.ScorecardEntry {
		k := playerID + "#" + strconv.Itoa(number)
		if i, ok := index[k]; ok {
			return &out[i]
		}
		index[k] = len(out)
		out = append(out, ingestion.ScorecardEntry{
			Player: player.Player{ID: playerID, Name: name},
			Stat: playerstats.Stat{
				ID:       id.Stat(playerID, matchID, number),
				PlayerID: playerID,
				MatchID:  matchID,
				Innings:  number,
			},
		})
		return &out[len(out)-1]
	}

	for i, inn := range innings {
		path := fmt.Sprintf("%s[%d]", key, i)
		if nested := getMap(inn, "inningsInfo"); nested != nil {
			inn = nested
			path += ".inningsInfo"
		}
		number := i + 1
		inningsID, ok, err := getInt64(inn, path, "inningsId")
		if err != nil {
			return nil, err
		}
		if ok && inningsID > 0 {
			number = int(inningsID)
		}

		batters := objects(getMap(inn, "batTeamDetails"), "batsmenData")
		battersPath := path + ".batTeamDetails.batsmenData"
		if batters == nil {
			batters, battersPath = objects(inn, "batsman"), path+".batsman"
		}
		for pos, bat := range batters {
			field := fmt.Sprintf("%s[%d]", battersPath, pos)
			playerID, name, err := linePlayer(bat, field, "batId", "batName")
			if err != nil {
				return nil, err
			}
			outDesc, err := firstString(bat, field, "outDesc", "outdec")
			if err != nil {
				return nil, err
			}
			runs, err := getInt(bat, field, "runs")
			if err != nil {
				return nil, err
			}
			balls, err := getInt(bat, field, "balls")
			if err != nil {
				return nil, err
			}
			if outDesc == "" && balls == 0 && runs == 0 {
				continue
			}
			fours, err := getInt(bat, field, "fours")
			if err != nil {
				return nil, err
			}
			sixes, err := getInt(bat, field, "sixes")
			if err != nil {
				return nil, err
			}

			e := entryFor(playerID, name, number)
			position := pos + 1
			if position <= 11 {
				e.Stat.BattingPosition = &position
			}
			e.Stat.Runs = runs
			e.Stat.BallsFaced = balls
			e.Stat.Fours = fours
			e.Stat.Sixes = sixes
			e.Stat.Dismissed = isDismissal(outDesc)
		}

		bowlers := objects(getMap(inn, "bowlTeamDetails"), "bowlersData")
		bowlersPath := path + ".bowlTeamDetails.bowlersData"
		if bowlers == nil {
			bowlers, bowlersPath = objects(inn, "bowler"), path+".bowler"
		}
		for pos, bowl := range bowlers {
			field := fmt.Sprintf("%s[%d]", bowlersPath, pos)
			playerID, name, err := linePlayer(bowl, field, "bowlerId", "bowlName")
			if err != nil {
				return nil, err
			}
			balls, err := oversField(bowl, field)
			if err != nil {
				return nil, err
			}
			maidens, err := getInt(bowl, field, "maidens")
			if err != nil {
				return nil, err
			}
			conceded, err := getInt(bowl, field, "runs")
			if err != nil {
				return nil, err
			}
			wickets, err := getInt(bowl, field, "wickets")
			if err != nil {
				return nil, err
			}

			e := entryFor(playerID, name, number)
			e.Stat.BallsBowled = balls
			e.Stat.Maidens = maidens
			e.Stat.RunsConceded = conceded
			e.Stat.Wickets = wickets
		}
	}
	return out, nil
}

func linePlayer(line map[string]any, path, idKey, nameKey string) (string, string, error) {
	ref, ok, err := getInt64(line, path, idKey)
	if err != nil {
		return "", "", err
	}
	if !ok {
		if ref, ok, err = getInt64(line, path, "id"); err != nil {
			return "", "", err
		}
	}
	if !ok {
		return "", "", ingestion.MissingField(join(path, idKey))
	}
	name, err := firstString(line, path, nameKey, "name")
	if err != nil {
		return "", "", err
	}
	if name == "" {
		return "", "", ingestion.MissingField(join(path, nameKey))
	}
	return id.Provider("player", ref), name, nil
}

// oversField reads overs sent either as "3.4" text or as the number 3.4.
func oversField(line map[string]any, path string) (int, error) {
	field := join(path, "overs")
	switch typed := lookup(line, "overs").(type) {
	case nil:
		return 0, nil
	case string:
		balls, err := playerstats.OversToBalls(typed)
		if err != nil {
			return 0, ingestion.TypeMismatch(field, err.Error())
		}
		return balls, nil
	default:
		v, err := getFloat(line, path, "overs")
		if err != nil {
			return 0, err
		}
		balls, err := playerstats.OversFloatToBalls(v)
		if err != nil {
			return 0, ingestion.TypeMismatch(field, err.Error())
		}
		return balls, nil
	}
}

func isDismissal(outDesc string) bool {
	switch strings.ToLower(strings.TrimSpace(outDesc)) {
	case "", "not out", "batting", "retired hurt", "retired not out":
		return false
	default:
		return true
	}
}

// NormalizeRanking maps one row of a rankings table.
func NormalizeRanking(raw map[string]any) (ingestion.RankingEntry, error) {
	rank, ok, err := getInt64(raw, "", "rank")
	if err != nil {
		return ingestion.RankingEntry{}, err
	}
	if !ok {
		return ingestion.RankingEntry{}, ingestion.MissingField("rank")
	}
	name, err := getString(raw, "", "name")
	if err != nil {
		return ingestion.RankingEntry{}, err
	}
	if name == "" {
		return ingestion.RankingEntry{}, ingestion.MissingField("name")
	}
	country, err := getString(raw, "", "country")
	if err != nil {
		return ingestion.RankingEntry{}, err
	}
	rating, err := getInt(raw, "", "rating")
	if err != nil {
		return ingestion.RankingEntry{}, err
	}

	entry := ingestion.RankingEntry{Rank: int(rank), Name: name, Country: country, Rating: rating}
	points, ok, err := getInt64(raw, "", "points")
	if err != nil {
		return ingestion.RankingEntry{}, err
	}
	if ok {
		p := int(points)
		entry.Points = &p
	}
	return entry, nil
}

// RankingEntries returns the rows of a rankings document.
func RankingEntries(doc map[string]any) []map[string]any {
	return objects(doc, "rank")
}
