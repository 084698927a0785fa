package store

// schema creates the three identity tables described in the data model:
// Cameras and Lenses are content-addressed (their UNIQUE constraints are a
// best-effort guard -- SQL's UNIQUE treats two NULLs as distinct, so it
// can't fully enforce the null-equals-null dedup rule on its own; the
// single-writer lookup-before-insert discipline in camera.go/lens.go is
// what actually guarantees it), and Photos is keyed by its directory-path
// identity triple.
const schema = `
CREATE TABLE IF NOT EXISTS cameras (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	make          TEXT NOT NULL,
	model         TEXT NOT NULL,
	daylight_wb_r  REAL,
	daylight_wb_g1 REAL,
	daylight_wb_b  REAL,
	daylight_wb_g2 REAL,
	UNIQUE (make, model, daylight_wb_r, daylight_wb_g1, daylight_wb_b, daylight_wb_g2)
);

CREATE TABLE IF NOT EXISTS lenses (
	id                      INTEGER PRIMARY KEY AUTOINCREMENT,
	make                    TEXT,
	model                   TEXT,
	spec                    TEXT,
	min_focal_length        REAL NOT NULL,
	max_focal_length        REAL NOT NULL,
	lens_f_stops            REAL NOT NULL,
	max_aperture_min_focal  REAL NOT NULL,
	max_aperture_max_focal  REAL NOT NULL,
	effective_max_aperture  REAL NOT NULL,
	UNIQUE (make, model, spec, min_focal_length, max_focal_length, lens_f_stops,
	        max_aperture_min_focal, max_aperture_max_focal, effective_max_aperture)
);

CREATE TABLE IF NOT EXISTS photos (
	id                 INTEGER PRIMARY KEY AUTOINCREMENT,
	date               TEXT NOT NULL,
	group_name         TEXT NOT NULL,
	file_name          TEXT NOT NULL,

	time_taken         DATETIME NOT NULL,
	file_size_kb       INTEGER NOT NULL,
	iso                INTEGER,
	shutter_speed      TEXT,
	aperture           REAL,
	focal_length       REAL,
	auto_focus         BOOLEAN,
	focus_distance     REAL NOT NULL,
	field_of_view      REAL NOT NULL,

	raw_width          INTEGER NOT NULL,
	raw_height         INTEGER NOT NULL,
	width              INTEGER NOT NULL,
	height             INTEGER NOT NULL,
	thumb_width        INTEGER,
	thumb_height       INTEGER,

	capture_wb_r       REAL,
	capture_wb_g1      REAL,
	capture_wb_b       REAL,
	capture_wb_g2      REAL,
	avg_red            REAL NOT NULL,
	avg_green          REAL NOT NULL,
	avg_blue           REAL NOT NULL,

	black_level_r      REAL NOT NULL,
	black_level_g1     REAL NOT NULL,
	black_level_b      REAL NOT NULL,
	black_level_g2     REAL NOT NULL,
	white_level_r      REAL NOT NULL,
	white_level_g1     REAL NOT NULL,
	white_level_b      REAL NOT NULL,
	white_level_g2     REAL NOT NULL,

	brightness_min     INTEGER NOT NULL,
	brightness_p10     REAL NOT NULL,
	brightness_p20     REAL NOT NULL,
	brightness_p30     REAL NOT NULL,
	brightness_p40     REAL NOT NULL,
	brightness_median  REAL NOT NULL,
	brightness_p60     REAL NOT NULL,
	brightness_p70     REAL NOT NULL,
	brightness_p80     REAL NOT NULL,
	brightness_p90     REAL NOT NULL,
	brightness_max     INTEGER NOT NULL,
	brightness_mean    REAL NOT NULL,
	brightness_stdev   REAL NOT NULL,
	brightness_iqr     REAL NOT NULL,
	exposure_difference REAL,

	camera_id          INTEGER NOT NULL REFERENCES cameras(id),
	lens_id            INTEGER REFERENCES lenses(id),

	UNIQUE (date, group_name, file_name)
);
`
