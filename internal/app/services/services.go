// Package services holds the business rules of the administration backend.
//
// Services defined in this package:
//   - AuthService: sessions, registration, password changes
//   - UserService: the caller's profile and the staff user listing
//   - DepartmentService: departments and their sequential identifiers
//   - CourseService: courses and the course choice listings
//   - SyllabusService: syllabus PDFs and their metadata
//   - SpreadsheetService: CSV and XLSX import and export of reference data
//
// Every mutating call takes the acting user as a *models.Actor and stamps
// the audit columns with it.
package services
