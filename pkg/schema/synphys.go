package schema

// Synphys returns the descriptor set for the synaptic physiology database:
// brain slices, multipatch experiments, and the recordings, stimuli, and
// responses acquired from them. The set is data only; entity generation and
// relationship wiring happen in later phases so that forward references
// (e.g. patch_clamp_recording -> test_pulse) stay legal.
func Synphys() *DescriptorSet {
	return &DescriptorSet{
		Tables: []Table{
			{
				Name:    "slice",
				Comment: "All brain slices on which an experiment was attempted.",
				Columns: []Column{
					{Name: "acq_timestamp", Type: "datetime", Comment: "Creation timestamp for slice data acquisition folder.", Constraints: Constraints{Unique: true}},
					{Name: "species", Type: "str", Comment: "Human | mouse (from LIMS)"},
					{Name: "age", Type: "int", Comment: "Specimen age (in days) at time of dissection (from LIMS)"},
					{Name: "genotype", Type: "str", Comment: "Specimen donor genotype (from LIMS)"},
					{Name: "orientation", Type: "str", Comment: `Orientation of the slice plane (eg "sagittal"; from LIMS specimen name)`},
					{Name: "surface", Type: "str", Comment: `The surface of the slice exposed during the experiment (eg "left"; from LIMS specimen name)`},
					{Name: "hemisphere", Type: "str", Comment: "The brain hemisphere from which the slice originated. (from LIMS specimen name)"},
					{Name: "quality", Type: "int", Comment: "Experimenter subjective slice quality assessment (0-5)"},
					{Name: "slice_time", Type: "datetime", Comment: "Time when this specimen was sliced"},
					{Name: "slice_conditions", Type: "object", Comment: "JSON containing solutions, perfusion, incubation time, etc."},
					{Name: "lims_specimen_name", Type: "str", Comment: `Name of LIMS "slice" specimen`},
					{Name: "original_path", Type: "str", Comment: "Original path of the slice folder on the acquisition rig"},
					{Name: "submission_data", Type: "object"},
				},
			},
			{
				Name:    "experiment",
				Comment: "A group of cells patched simultaneously in the same slice.",
				Columns: []Column{
					{Name: "original_path", Type: "str", Comment: "Describes original location of raw data"},
					{Name: "acq_timestamp", Type: "datetime", Comment: "Creation timestamp for site data acquisition folder.", Constraints: Constraints{Unique: true}},
					{Name: "slice_id", Type: "slice.id"},
					{Name: "target_region", Type: "str", Comment: "The intended brain region for this experiment"},
					{Name: "internal", Type: "str", Comment: "The name of the internal solution used in this experiment. The solution should be described in the pycsf database."},
					{Name: "acsf", Type: "str", Comment: "The name of the ACSF solution used in this experiment. The solution should be described in the pycsf database."},
					{Name: "target_temperature", Type: "float"},
					{Name: "date", Type: "datetime"},
					{Name: "lims_specimen_id", Type: "int", Comment: `ID of LIMS "CellCluster" specimen.`},
					{Name: "submission_data", Type: "object", Comment: "structure generated for original submission."},
					{Name: "lims_trigger_id", Type: "int", Comment: "ID used to query status of LIMS upload."},
					{Name: "connectivity_analysis_complete", Type: "bool"},
					{Name: "kinetics_analysis_complete", Type: "bool"},
				},
			},
			{
				Name:    "electrode",
				Comment: "Each electrode records a patch attempt, whether or not it resulted in a successful cell recording.",
				Columns: []Column{
					{Name: "expt_id", Type: "experiment.id"},
					{Name: "patch_status", Type: "str", Comment: "no seal, low seal, GOhm seal, tech fail, ..."},
					{Name: "device_key", Type: "int"},
					{Name: "initial_resistance", Type: "float"},
					{Name: "initial_current", Type: "float"},
					{Name: "pipette_offset", Type: "float"},
					{Name: "final_resistance", Type: "float"},
					{Name: "final_current", Type: "float"},
					{Name: "notes", Type: "str"},
				},
			},
			{
				Name: "cell",
				Columns: []Column{
					{Name: "electrode_id", Type: "electrode.id"},
					{Name: "cre_type", Type: "str"},
					{Name: "patch_start", Type: "float"},
					{Name: "patch_stop", Type: "float"},
					{Name: "seal_resistance", Type: "float"},
					{Name: "has_biocytin", Type: "bool"},
					{Name: "has_dye_fill", Type: "bool"},
					{Name: "pass_qc", Type: "bool"},
					{Name: "pass_spike_qc", Type: "bool"},
					{Name: "depth", Type: "float"},
					{Name: "position", Type: "object"},
				},
			},
			{
				Name:    "pair",
				Comment: "All possible putative synaptic connections",
				Columns: []Column{
					{Name: "pre_cell", Type: "cell.id"},
					{Name: "post_cell", Type: "cell.id"},
					{Name: "synapse", Type: "bool", Comment: "Whether the experimenter thinks there is a synapse"},
					{Name: "electrical", Type: "bool", Comment: "whether the experimenter thinks there is a gap junction"},
				},
			},
			{
				Name: "sync_rec",
				Columns: []Column{
					{Name: "experiment_id", Type: "experiment.id"},
					{Name: "sync_rec_key", Type: "object"},
					{Name: "temperature", Type: "float"},
				},
			},
			{
				Name: "recording",
				Columns: []Column{
					{Name: "sync_rec_id", Type: "sync_rec.id", Comment: "References the synchronous recording to which this recording belongs."},
					{Name: "device_key", Type: "int", Comment: "Identifies the device that generated this recording (this is usually the MIES AD channel)"},
					{Name: "start_time", Type: "datetime", Comment: "The clock time at the start of this recording"},
				},
			},
			{
				Name:    "patch_clamp_recording",
				Comment: "Extra data for recordings made with a patch clamp amplifier",
				Columns: []Column{
					{Name: "recording_id", Type: "recording.id"},
					{Name: "electrode_id", Type: "electrode.id", Comment: "References the patch electrode that was used during this recording"},
					{Name: "clamp_mode", Type: "str", Comment: `The mode used by the patch clamp amplifier: "ic" or "vc"`},
					{Name: "patch_mode", Type: "str", Comment: "The state of the membrane patch. E.g. 'whole cell', 'cell attached', 'loose seal', 'bath', 'inside out', 'outside out'"},
					{Name: "stim_name", Type: "object", Comment: "The name of the stimulus protocol"},
					{Name: "baseline_potential", Type: "float"},
					{Name: "baseline_current", Type: "float"},
					{Name: "baseline_rms_noise", Type: "float"},
					{Name: "nearest_test_pulse_id", Type: "test_pulse.id"},
				},
			},
			{
				Name:    "multi_patch_probe",
				Comment: "Extra data for multipatch recordings intended to test synaptic connections.",
				Columns: []Column{
					{Name: "patch_clamp_recording_id", Type: "patch_clamp_recording.id"},
					{Name: "induction_frequency", Type: "float"},
					{Name: "recovery_delay", Type: "float"},
					{Name: "n_spikes_evoked", Type: "int"},
				},
			},
			{
				Name: "test_pulse",
				Columns: []Column{
					{Name: "start_index", Type: "int"},
					{Name: "stop_index", Type: "int"},
					{Name: "baseline_current", Type: "float"},
					{Name: "baseline_potential", Type: "float"},
					{Name: "access_resistance", Type: "float"},
					{Name: "input_resistance", Type: "float"},
					{Name: "capacitance", Type: "float"},
					{Name: "time_constant", Type: "float"},
				},
			},
			{
				Name:    "stim_pulse",
				Comment: "A pulse stimulus intended to evoke an action potential",
				Columns: []Column{
					{Name: "recording_id", Type: "recording.id"},
					{Name: "pulse_number", Type: "int"},
					{Name: "onset_time", Type: "float"},
					{Name: "onset_index", Type: "int"},
					{Name: "next_pulse_index", Type: "int", Comment: "index of the next pulse on any channel in the sync rec"},
					{Name: "amplitude", Type: "float"},
					{Name: "length", Type: "int"},
					{Name: "n_spikes", Type: "int", Comment: "number of spikes evoked"},
				},
			},
			{
				Name:    "stim_spike",
				Comment: "An evoked action potential",
				Columns: []Column{
					{Name: "recording_id", Type: "recording.id"},
					{Name: "pulse_id", Type: "stim_pulse.id"},
					{Name: "peak_index", Type: "int"},
					{Name: "peak_diff", Type: "float"},
					{Name: "peak_val", Type: "float"},
					{Name: "rise_index", Type: "int"},
					{Name: "max_dvdt", Type: "float"},
				},
			},
			{
				Name:    "baseline",
				Comment: "A snippet of baseline data, matched to a postsynaptic recording",
				Columns: []Column{
					{Name: "recording_id", Type: "recording.id", Comment: "The recording from which this baseline snippet was extracted."},
					{Name: "start_index", Type: "int", Comment: "start index of this snippet, relative to the beginning of the recording"},
					{Name: "stop_index", Type: "int", Comment: "stop index of this snippet, relative to the beginning of the recording"},
					{Name: "data", Type: "array", Comment: "array of baseline data sampled at 20kHz"},
					{Name: "mode", Type: "float", Comment: "most common value in the baseline snippet"},
				},
			},
			{
				Name:    "pulse_response",
				Comment: "A postsynaptic recording taken during a presynaptic stimulus",
				Columns: []Column{
					{Name: "recording_id", Type: "recording.id"},
					{Name: "pulse_id", Type: "stim_pulse.id"},
					{Name: "pair_id", Type: "pair.id"},
					{Name: "start_index", Type: "int"},
					{Name: "stop_index", Type: "int"},
					{Name: "data", Type: "array", Comment: "array of response data sampled at 20kHz"},
					{Name: "baseline_id", Type: "baseline.id"},
				},
			},
		},

		// Ownership is declared explicitly per edge. The strictly
		// hierarchical acquisition chain is owning (cascade); pointers to
		// shared or computed-from entities are references (null on delete).
		Relationships: []Relationship{
			{Child: "experiment", Column: "slice_id", Policy: Owning, Collection: "experiments", Ref: "slice"},
			{Child: "electrode", Column: "expt_id", Policy: Owning, Collection: "electrodes", Ref: "experiment"},
			{Child: "cell", Column: "electrode_id", Policy: Owning, Collection: "cells", Ref: "electrode"},
			{Child: "pair", Column: "pre_cell", Policy: Reference, Ref: "pre_cell"},
			{Child: "pair", Column: "post_cell", Policy: Reference, Ref: "post_cell"},
			{Child: "sync_rec", Column: "experiment_id", Policy: Owning, Collection: "sync_recs", Ref: "experiment"},
			{Child: "recording", Column: "sync_rec_id", Policy: Owning, Collection: "recordings", Ref: "sync_rec"},
			{Child: "patch_clamp_recording", Column: "recording_id", Policy: Owning, Collection: "patch_clamp_recordings", Ref: "recording"},
			{Child: "patch_clamp_recording", Column: "electrode_id", Policy: Reference, Ref: "electrode"},
			{Child: "patch_clamp_recording", Column: "nearest_test_pulse_id", Policy: Reference, Ref: "nearest_test_pulse"},
			{Child: "multi_patch_probe", Column: "patch_clamp_recording_id", Policy: Owning, Collection: "multi_patch_probes", Ref: "patch_clamp_recording"},
			{Child: "stim_pulse", Column: "recording_id", Policy: Owning, Collection: "stim_pulses", Ref: "recording"},
			{Child: "stim_spike", Column: "recording_id", Policy: Owning, Collection: "stim_spikes", Ref: "recording"},
			{Child: "stim_spike", Column: "pulse_id", Policy: Reference, Ref: "pulse"},
			{Child: "baseline", Column: "recording_id", Policy: Owning, Collection: "baselines", Ref: "recording"},
			{Child: "pulse_response", Column: "recording_id", Policy: Reference, Ref: "recording"},
			{Child: "pulse_response", Column: "pulse_id", Policy: Reference, Ref: "stim_pulse"},
			{Child: "pulse_response", Column: "pair_id", Policy: Reference, Ref: "pair"},
			{Child: "pulse_response", Column: "baseline_id", Policy: Reference, Ref: "baseline"},
		},
	}
}
