package dto

type DashboardStatsResponse struct {
	Doctors            int64  `json:"doctors"`
	AvailableDoctors   int64  `json:"available_doctors"`
	Patients           int64  `json:"patients"`
	Appointments       int64  `json:"appointments"`
	BookedAppointments int64  `json:"booked_appointments"`
	QueueToday         int64  `json:"queue_today"`
	QueueWaitingToday  int64  `json:"queue_waiting_today"`
	QueueDate          string `json:"queue_date"`
}
