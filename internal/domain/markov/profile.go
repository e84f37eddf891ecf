package markov

import "fmt"

// Profile metric keys as stored in the team_profiles table, beyond the
// twelve adjustable percentages.
const (
	ProfileFG2Att       = "fg2a"
	ProfileFG3Att       = "fg3a"
	ProfileFTAtt        = "fta"
	ProfileTurnovers    = "tov"
	ProfileORebs        = "oreb"
	ProfileDRebs        = "dreb"
	ProfileOppFG2Att    = "opp_fg2a"
	ProfileOppFG3Att    = "opp_fg3a"
	ProfileOppFTAtt     = "opp_fta"
	ProfileOppTurnovers = "opp_tov"
	ProfileOppORebs     = "opp_oreb"
	ProfileOppDRebs     = "opp_dreb"
	ProfilePossPerGame  = "poss_per_game"
)

// ProfileFromMetrics assembles a Profile from a stored metric map.
// Every profile key must be present and the pace positive; anything
// less marks the stored profile unusable.
func ProfileFromMetrics(metrics map[string]float64) (Profile, error) {
	var missing string
	get := func(key string) float64 {
		v, ok := metrics[key]
		if !ok && missing == "" {
			missing = key
		}
		return v
	}

	p := Profile{
		FG2Pct:     get(MetricFG2),
		FG3Pct:     get(MetricFG3),
		FTPct:      get(MetricFT),
		ORebPct:    get(MetricOREB),
		DRebPct:    get(MetricDREB),
		TOVPct:     get(MetricTOV),
		OppFG2Pct:  get(MetricOppFG2),
		OppFG3Pct:  get(MetricOppFG3),
		OppFTPct:   get(MetricOppFT),
		OppORebPct: get(MetricOppOREB),
		OppDRebPct: get(MetricOppDREB),
		OppTOVPct:  get(MetricOppTOV),

		FG2Att:       get(ProfileFG2Att),
		FG3Att:       get(ProfileFG3Att),
		FTAtt:        get(ProfileFTAtt),
		Turnovers:    get(ProfileTurnovers),
		ORebs:        get(ProfileORebs),
		DRebs:        get(ProfileDRebs),
		OppFG2Att:    get(ProfileOppFG2Att),
		OppFG3Att:    get(ProfileOppFG3Att),
		OppFTAtt:     get(ProfileOppFTAtt),
		OppTurnovers: get(ProfileOppTurnovers),
		OppORebs:     get(ProfileOppORebs),
		OppDRebs:     get(ProfileOppDRebs),

		PossPerGame: get(ProfilePossPerGame),
	}

	if missing != "" {
		return Profile{}, fmt.Errorf("%w: profile missing %s", ErrData, missing)
	}
	if p.PossPerGame <= 0 {
		return Profile{}, fmt.Errorf("%w: non-positive poss_per_game %v", ErrData, p.PossPerGame)
	}
	return p, nil
}

// Metrics flattens the profile back into the stored metric map. It is
// the inverse of ProfileFromMetrics and feeds the seeder and the
// metric-profile endpoint.
func (p Profile) Metrics() map[string]float64 {
	return map[string]float64{
		MetricFG2:     p.FG2Pct,
		MetricFG3:     p.FG3Pct,
		MetricFT:      p.FTPct,
		MetricOREB:    p.ORebPct,
		MetricDREB:    p.DRebPct,
		MetricTOV:     p.TOVPct,
		MetricOppFG2:  p.OppFG2Pct,
		MetricOppFG3:  p.OppFG3Pct,
		MetricOppFT:   p.OppFTPct,
		MetricOppOREB: p.OppORebPct,
		MetricOppDREB: p.OppDRebPct,
		MetricOppTOV:  p.OppTOVPct,

		ProfileFG2Att:       p.FG2Att,
		ProfileFG3Att:       p.FG3Att,
		ProfileFTAtt:        p.FTAtt,
		ProfileTurnovers:    p.Turnovers,
		ProfileORebs:        p.ORebs,
		ProfileDRebs:        p.DRebs,
		ProfileOppFG2Att:    p.OppFG2Att,
		ProfileOppFG3Att:    p.OppFG3Att,
		ProfileOppFTAtt:     p.OppFTAtt,
		ProfileOppTurnovers: p.OppTurnovers,
		ProfileOppORebs:     p.OppORebs,
		ProfileOppDRebs:     p.OppDRebs,

		ProfilePossPerGame: p.PossPerGame,
	}
}
